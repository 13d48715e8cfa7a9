// Package apiclient is a small client for a running mnemosyne API server,
// used by the identify and health commands.
package apiclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/BillDuke13/mnemosyne/api"
	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

const defaultTimeout = 60 * time.Second

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the mnemosyne HTTP API.
type Client struct {
	client *resty.Client
}

// New creates a Client for the API server at target (e.g. "http://localhost:8000").
func New(target string, timeout time.Duration) (*Client, error) {
	if target == "" {
		return nil, errors.New("api target is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(target, "/")).
			SetTimeout(timeout),
	}, nil
}

// Identify posts a face hint, and optionally a raw image, to /identify.
func (c *Client) Identify(ctx context.Context, hint string, image []byte) (*memory.Entry, error) {
	body := api.IdentifyRequest{}
	if hint != "" {
		body.FaceHint = &hint
	}
	if len(image) > 0 {
		encoded := "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
		body.Image = &encoded
	}

	var entry memory.Entry
	if err := c.do(ctx, http.MethodPost, "/identify", body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Health fetches /health.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var health api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var apiErr api.ErrorResponse

	req := c.client.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() {
		return &StatusError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}

	return nil
}
