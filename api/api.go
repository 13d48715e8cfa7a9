package api

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

//go:embed static
var staticFS embed.FS

// Identifier is the identify service behind the API.
type Identifier interface {
	Identify(ctx context.Context, hint string) (*memory.Entry, error)
	EntryCount(ctx context.Context) (int, error)
}

// Server is the API server for identifying people from the memory table.
type Server struct {
	config     Config
	identifier Identifier
	logger     *slog.Logger
	app        *fiber.App
}

// Option configures optional Server routes.
type Option func(*Server)

// WithMCPHandler mounts an MCP streamable HTTP handler at /mcp.
func WithMCPHandler(h http.Handler) Option {
	return func(s *Server) {
		s.app.All("/mcp", adaptor.HTTPHandler(h))
	}
}

// NewServer creates a new API server.
func NewServer(config Config, identifier Identifier, logger *slog.Logger, opts ...Option) (*Server, error) {
	if identifier == nil {
		return nil, errors.New("identifier is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	s := &Server{
		config:     config,
		identifier: identifier,
		logger:     logger,
		app:        app,
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(s.logRequests)

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	app.Get("/", s.handleIndex)
	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(assets),
	}))
	app.Get("/ping", s.handlePing)
	app.Post("/identify", s.handleIdentify)
	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
