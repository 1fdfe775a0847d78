package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/grouptheoryco/verbatim/pkg/insights"
)

// AddInsightsRequest carries pre-embedded insight documents for storage.
type AddInsightsRequest struct {
	Documents []insights.Document `json:"documents"`
}

// SearchInsightsRequest is a similarity search over stored insights.
type SearchInsightsRequest struct {
	Embedding []float32 `json:"embedding"`
	TopK      int       `json:"top_k"`
}

// SearchInsightsResponse is the ranked result list of a search.
type SearchInsightsResponse struct {
	Results []insights.QueryResult `json:"results"`
}

// handleAddInsights stores embedded insight documents in the
// configured vector backend.
func (s *Server) handleAddInsights(c *fiber.Ctx) error {
	if s.insight == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "insight store not configured"})
	}

	var req AddInsightsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed insight request"})
	}

	if len(req.Documents) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "no documents provided"})
	}

	if err := s.insight.Add(c.Context(), req.Documents); err != nil {
		s.logger.Error("failed to store insights", "count", len(req.Documents), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to store insights"})
	}

	return c.Status(fiber.StatusCreated).JSON(map[string]int{"stored": len(req.Documents)})
}

// handleSearchInsights runs a similarity query against the configured
// vector backend.
func (s *Server) handleSearchInsights(c *fiber.Ctx) error {
	if s.insight == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "insight store not configured"})
	}

	var req SearchInsightsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed search request"})
	}

	if len(req.Embedding) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "embedding is required"})
	}

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	results, err := s.insight.Query(c.Context(), req.Embedding, topK)
	if err != nil {
		s.logger.Error("insight search failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "insight search failed"})
	}

	return c.JSON(SearchInsightsResponse{Results: results})
}
