// Package insights provides interfaces and implementations for storing
// and querying embedded session summaries.
package insights

import "context"

// Document represents one embedded insight with its session context.
type Document struct {
	// ID is a unique identifier for the document.
	ID string

	// StudyID and SessionID tie the insight back to its session.
	StudyID   string
	SessionID string

	// Summary is the human-readable insight text.
	Summary string

	// Embedding is the vector representation of the summary.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of insight embeddings.
type Driver interface {
	// Add stores documents with their embeddings. A document with an
	// existing ID is updated in place.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
