package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// IdentifyRequest is the body of POST /identify. The image is only checked
// for well-formed base64; recognition is driven by the face hint.
type IdentifyRequest struct {
	Image    *string `json:"image,omitempty"`
	FaceHint *string `json:"face_hint,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	ChainInfo
	EntryCount int `json:"entry_count"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing is a liveness check that does not touch the upstreams.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		return fiber.ErrNotFound
	}
	c.Type("html")
	return c.Send(page)
}

// handleIdentify resolves the hint, verifies the entry and returns it.
func (s *Server) handleIdentify(c *fiber.Ctx) error {
	var req IdentifyRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
	}

	if req.Image != nil && *req.Image != "" {
		if err := validateImage(*req.Image); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: fmt.Sprintf("Invalid image payload: %v", err)})
		}
	}

	hint := ""
	if req.FaceHint != nil {
		hint = *req.FaceHint
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	entry, err := s.identifier.Identify(ctx, hint)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(entry)
}

// handleHealth reports the configured upstreams and the live entry count.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	count, err := s.identifier.EntryCount(ctx)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(HealthResponse{
		ChainInfo:  s.config.Chain,
		EntryCount: count,
	})
}

// requestContext derives the context handed to the identifier. fasthttp does
// not cancel a handler when the client goes away, so the configured request
// timeout is the only bound on upstream work.
func (s *Server) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if s.config.RequestTimeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), s.config.RequestTimeout)
}

// validateImage checks that the payload (optionally a data URL) is base64.
// Line breaks and other whitespace inside the payload are ignored.
func validateImage(image string) error {
	payload := image
	if i := strings.LastIndex(image, ","); i >= 0 {
		payload = image[i+1:]
	}
	payload = strings.Join(strings.Fields(payload), "")
	_, err := base64.StdEncoding.DecodeString(payload)
	return err
}

// logRequests logs one line per request once the handler chain returns.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)

	return err
}
