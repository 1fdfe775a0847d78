// Package qdrant provides a Qdrant driver for the insight store.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/grouptheoryco/verbatim/pkg/insights"
)

const defaultCollection = "verbatim_insights"

// Config holds configuration for the Qdrant driver.
type Config struct {
	Host string
	Port int

	// Dimensions is the embedding vector size.
	Dimensions int

	// Collection is the collection name to use. Defaults to
	// "verbatim_insights" if empty.
	Collection string
}

// Driver implements insights.Driver backed by a Qdrant collection.
// Qdrant point IDs must be UUIDs, so document IDs are mapped to
// deterministic UUIDs and the original ID is kept in the payload.
type Driver struct {
	client     *qdrant.Client
	collection string
	logger     *slog.Logger
}

// NewDriver connects to Qdrant and ensures the collection exists.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant dimensions must be positive, got %d", c.Dimensions)
	}

	collection := c.Collection
	if collection == "" {
		collection = defaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: c.Host,
		Port: c.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", insights.ErrConnection, err)
	}

	d := &Driver{client: client, collection: collection, logger: logger}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", insights.ErrConnection, err)
	}

	if !exists {
		err := client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(c.Dimensions),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("creating collection %q: %w", collection, err)
		}
	}

	logger.Info("connected to Qdrant",
		"host", c.Host,
		"collection", collection,
	)

	return d, nil
}

// Add upserts documents as points keyed by a UUID derived from the
// document ID.
func (d *Driver) Add(ctx context.Context, docs []insights.Document) error {
	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(doc.ID)),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"doc_id":     doc.ID,
				"study_id":   doc.StudyID,
				"session_id": doc.SessionID,
				"summary":    doc.Summary,
			}),
		}
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting %d documents: %w", len(docs), err)
	}

	return nil
}

// Query returns the topK nearest documents.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]insights.QueryResult, error) {
	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}

	results := make([]insights.QueryResult, 0, len(points))
	for _, p := range points {
		results = append(results, insights.QueryResult{
			Document: documentFromPayload(p.GetPayload(), p.GetVectors().GetVector().GetData()),
			Score:    p.GetScore(),
		})
	}

	return results, nil
}

// Get retrieves documents by ID. Unknown IDs are simply absent from
// the result.
func (d *Driver) Get(ctx context.Context, ids []string) ([]insights.Document, error) {
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(pointID(id))
	}

	points, err := d.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: d.collection,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}

	docs := make([]insights.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, documentFromPayload(p.GetPayload(), p.GetVectors().GetVector().GetData()))
	}

	return docs, nil
}

// Delete removes documents by ID.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(pointID(id))
	}

	_, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collection,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	return nil
}

// Close releases the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

// pointID derives a stable UUID from a document ID.
func pointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String()
}

func documentFromPayload(payload map[string]*qdrant.Value, embedding []float32) insights.Document {
	doc := insights.Document{Embedding: embedding}

	if v, ok := payload["doc_id"]; ok {
		doc.ID = v.GetStringValue()
	}
	if v, ok := payload["study_id"]; ok {
		doc.StudyID = v.GetStringValue()
	}
	if v, ok := payload["session_id"]; ok {
		doc.SessionID = v.GetStringValue()
	}
	if v, ok := payload["summary"]; ok {
		doc.Summary = v.GetStringValue()
	}

	return doc
}
