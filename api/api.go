package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/grouptheoryco/verbatim/pkg/eventstream"
	"github.com/grouptheoryco/verbatim/pkg/insights"
	"github.com/grouptheoryco/verbatim/pkg/registry"
	"github.com/grouptheoryco/verbatim/pkg/session"
)

// Server is the API server for the verbatim session system.
type Server struct {
	config    Config
	store     *session.Store
	catalog   *registry.Registry
	publisher eventstream.Publisher
	insight   insights.Driver
	logger    *slog.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The store, catalog, publisher,
// and insight driver are injected so they can be shared with CLI
// commands. A nil insight driver disables the insight endpoints.
func NewServer(config Config, store *session.Store, catalog *registry.Registry, publisher eventstream.Publisher, insight insights.Driver, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		store:     store,
		catalog:   catalog,
		publisher: publisher,
		insight:   insight,
		logger:    logger,
		app:       app,
	}

	app.Get("/healthz", s.handleHealthz)
	app.Get("/schema", s.handleSchema)
	app.Post("/studies/:study/sessions/:session", s.handleSaveSession)
	app.Get("/studies/:study/sessions/:session/artifacts", s.handleArtifacts)
	app.Get("/studies/:study/sessions/:session/validate", s.handleValidate)
	app.Get("/studies/:study/saves", s.handleListSaves)
	app.Post("/aggregate", s.handleAggregate)
	app.Post("/insights/documents", s.handleAddInsights)
	app.Post("/insights/search", s.handleSearchInsights)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
