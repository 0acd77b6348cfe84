// Package mcp provides an MCP (Model Context Protocol) server exposing the
// research notebook to agents.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/verso/pkg/panel"
	"github.com/papercomputeco/verso/pkg/utils"
)

type Config struct {
	// Panel owns the notebook store the tools read and mutate
	Panel *panel.Panel

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the notebook tools.
func NewServer(c Config) (*Server, error) {
	if c.Panel == nil {
		return nil, errors.New("panel is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "verso",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listToolName,
		Description: listDescription,
	}, s.handleList)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        appendToolName,
		Description: appendDescription,
	}, s.handleAppend)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        removeToolName,
		Description: removeDescription,
	}, s.handleRemove)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        briefToolName,
		Description: briefDescription,
	}, s.handleBrief)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
