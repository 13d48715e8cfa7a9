// Package mcp provides an MCP (Model Context Protocol) server that lets agents
// identify people from the memory table.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
	"github.com/BillDuke13/mnemosyne/pkg/utils"
)

// Identifier resolves and verifies memory entries.
type Identifier interface {
	Identify(ctx context.Context, hint string) (*memory.Entry, error)
	EntryCount(ctx context.Context) (int, error)
}

type Config struct {
	// Identifier backs every tool
	Identifier Identifier

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the identify and count tools.
func NewServer(c Config) (*Server, error) {
	if c.Identifier == nil {
		return nil, errors.New("identifier is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mnemosyne",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        identifyToolName,
		Description: identifyDescription,
	}, s.handleIdentify)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        countToolName,
		Description: countDescription,
	}, s.handleCount)

	s.mcpServer = mcpServer

	// Stateless streamable HTTP handler
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

// MCPServer returns the underlying MCP server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
