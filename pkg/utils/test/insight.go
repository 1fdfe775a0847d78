package testutils

import (
	"context"

	"github.com/grouptheoryco/verbatim/pkg/insights"
)

// MockInsightDriver is a test insight store driver
type MockInsightDriver struct {
	documents []insights.Document
	results   []insights.QueryResult
}

func NewMockInsightDriver() *MockInsightDriver {
	return &MockInsightDriver{
		documents: make([]insights.Document, 0),
		results:   make([]insights.QueryResult, 0),
	}
}

// SetResults preloads the results returned by Query.
func (m *MockInsightDriver) SetResults(results []insights.QueryResult) {
	m.results = results
}

// Documents returns everything added so far.
func (m *MockInsightDriver) Documents() []insights.Document {
	return m.documents
}

func (m *MockInsightDriver) Add(_ context.Context, docs []insights.Document) error {
	m.documents = append(m.documents, docs...)
	return nil
}

func (m *MockInsightDriver) Query(_ context.Context, _ []float32, topK int) ([]insights.QueryResult, error) {
	if len(m.results) < topK {
		return m.results, nil
	}
	return m.results[:topK], nil
}

func (m *MockInsightDriver) Get(_ context.Context, _ []string) ([]insights.Document, error) {
	return m.documents, nil
}

func (m *MockInsightDriver) Delete(_ context.Context, _ []string) error {
	return nil
}

func (m *MockInsightDriver) Close() error {
	return nil
}
