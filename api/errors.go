package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

// StatusFor maps an identify or health error to its HTTP status.
func StatusFor(err error) int {
	var (
		upstream     *memory.UpstreamError
		malformed    *memory.MalformedRecordError
		verification *memory.VerificationError
		fiberErr     *fiber.Error
	)

	switch {
	case errors.Is(err, memory.ErrNoCandidates):
		return fiber.StatusNotFound
	case errors.As(err, &verification):
		return fiber.StatusInternalServerError
	case errors.As(err, &upstream), errors.As(err, &malformed):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// messageFor returns the client-facing message for err.
func messageFor(err error) string {
	var verification *memory.VerificationError
	if errors.As(err, &verification) {
		return "Summary hash verification failed"
	}
	return err.Error()
}

func (s *Server) writeError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", c.Path(),
			"status", status,
			"error", err,
		)
	}
	return c.Status(status).JSON(ErrorResponse{Error: messageFor(err)})
}

// errorHandler renders errors returned by handlers and middleware as JSON.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := StatusFor(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("unhandled error", "path", c.Path(), "error", err)
		}
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}
}
