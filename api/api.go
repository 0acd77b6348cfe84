package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/verso/api/mcp"
	"github.com/papercomputeco/verso/pkg/logger"
	"github.com/papercomputeco/verso/pkg/panel"
)

// Server is the API server for a single panel session.
type Server struct {
	config Config
	panel  *panel.Panel
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The panel is injected so the CLI, the MCP tools and the HTTP handlers
// share one notebook store.
func NewServer(config Config, p *panel.Panel, log *slog.Logger) (*Server, error) {
	if p == nil {
		return nil, errors.New("panel is required")
	}
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		panel:  p,
		logger: log,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/snapshot", s.handleSnapshot)

	app.Get("/notebook", s.handleListNotebook)
	app.Post("/notebook", s.handleAppendNotebook)
	app.Post("/notebook/selection", s.handleSaveSelection)
	app.Post("/notebook/insight", s.handleSaveInsight)
	app.Post("/notebook/sync", s.handleSyncNotebook)
	app.Get("/notebook/:id", s.handleGetNotebookItem)
	app.Delete("/notebook/:id", s.handleDeleteNotebookItem)

	app.Get("/page", s.handleGetPage)
	app.Post("/page/refresh", s.handleRefreshPage)
	app.Get("/brief", s.handleGetBrief)
	app.Post("/ask", s.handleAsk)
	app.Post("/reader", s.handleReadingMode)

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Panel:  p,
			Logger: log,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
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
