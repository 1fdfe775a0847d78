package api

import (
	"encoding/json"
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/grouptheoryco/verbatim/pkg/aggregate"
	"github.com/grouptheoryco/verbatim/pkg/eventstream"
	"github.com/grouptheoryco/verbatim/pkg/registry"
	"github.com/grouptheoryco/verbatim/pkg/session"
	"github.com/grouptheoryco/verbatim/pkg/turn"
)

// SaveSessionResponse reports a completed save.
type SaveSessionResponse struct {
	StudyID   string `json:"study_id"`
	SessionID string `json:"session_id"`
	TurnCount int    `json:"turn_count"`
	LogFile   string `json:"log_file"`
	TableFile string `json:"table_file"`
}

// AggregateRequest carries persona weights and responses for one
// aggregation call.
type AggregateRequest struct {
	Personas  []aggregate.Weight   `json:"personas"`
	Responses []aggregate.Response `json:"responses"`
}

// AggregateResponse is the computed weighted summary.
type AggregateResponse struct {
	WeightedSentiment float64                 `json:"weighted_sentiment"`
	Themes            []aggregate.ThemeWeight `json:"themes"`
	Weights           map[string]float64      `json:"normalized_weights"`
}

// handleHealthz returns a simple health check response.
func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(map[string]string{"status": "ok"})
}

// handleSchema returns the closed JSON schema for turn records.
func (s *Server) handleSchema(c *fiber.Ctx) error {
	schema, err := turn.Schema()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to generate schema"})
	}

	return c.JSON(schema)
}

// handleSaveSession decodes the request body as a JSON array of turn
// records, saves the batch, catalogs it, and publishes a save event.
// Every record passes the strict closed-schema decoder, so unknown or
// missing keys reject the whole batch with a 422.
func (s *Server) handleSaveSession(c *fiber.Ctx) error {
	studyID := c.Params("study")
	sessionID := c.Params("session")

	var raw []json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "request body must be a JSON array of turn records"})
	}

	turns := make([]*turn.Turn, len(raw))
	for i, record := range raw {
		t, err := turn.Decode(record)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: err.Error()})
		}
		turns[i] = t
	}

	result, err := s.store.Save(turns, studyID, sessionID)
	if err != nil {
		var vErr session.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: vErr.Error()})
		}
		s.logger.Error("session save failed", "study", studyID, "session", sessionID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save session"})
	}

	if _, err := s.catalog.Record(c.Context(), registry.Entry{
		StudyID:   studyID,
		SessionID: sessionID,
		LogFile:   filepath.Base(result.LogPath),
		TableFile: filepath.Base(result.TablePath),
		TurnCount: len(turns),
	}); err != nil {
		s.logger.Error("failed to catalog save", "study", studyID, "session", sessionID, "error", err)
	}

	event := eventstream.NewSessionSavedEvent(
		eventstream.SessionMeta{
			StudyID:   studyID,
			SessionID: sessionID,
			TurnCount: len(turns),
		},
		eventstream.ArtifactsMeta{
			LogFile:      filepath.Base(result.LogPath),
			TableFile:    filepath.Base(result.TablePath),
			MetadataFile: filepath.Base(result.MetadataPath),
		},
		eventstream.ValidationMeta{},
	)
	if err := s.publisher.PublishSessionSaved(c.Context(), event); err != nil {
		s.logger.Error("failed to publish save event", "study", studyID, "session", sessionID, "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(SaveSessionResponse{
		StudyID:   studyID,
		SessionID: sessionID,
		TurnCount: len(turns),
		LogFile:   filepath.Base(result.LogPath),
		TableFile: filepath.Base(result.TablePath),
	})
}

// handleArtifacts lists the stored files for a session.
func (s *Server) handleArtifacts(c *fiber.Ctx) error {
	artifacts, err := s.store.Artifacts(c.Params("study"), c.Params("session"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list artifacts"})
	}

	return c.JSON(artifacts)
}

// handleValidate re-validates every stored record log of a session.
func (s *Server) handleValidate(c *fiber.Ctx) error {
	report, err := s.store.ValidateStored(c.Params("study"), c.Params("session"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to validate session"})
	}

	return c.JSON(report)
}

// handleListSaves returns the cataloged saves for a study.
func (s *Server) handleListSaves(c *fiber.Ctx) error {
	entries, err := s.catalog.ListStudy(c.Context(), c.Params("study"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list saves"})
	}

	return c.JSON(map[string]any{
		"count": len(entries),
		"saves": entries,
	})
}

// handleAggregate normalizes the supplied persona weights and computes
// the weighted sentiment and theme ranking over the responses.
func (s *Server) handleAggregate(c *fiber.Ctx) error {
	var req AggregateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed aggregate request"})
	}

	weights, err := aggregate.NormalizeWeights(req.Personas)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: err.Error()})
	}

	sentiment, err := aggregate.WeightedSentiment(req.Responses, weights)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(AggregateResponse{
		WeightedSentiment: sentiment,
		Themes:            aggregate.ThemeImportance(req.Responses, weights),
		Weights:           weights,
	})
}
