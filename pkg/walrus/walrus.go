// Package walrus fetches memory summaries from a Walrus aggregator.
//
// Blobs are either a JSON envelope carrying a "summary" field or raw prose.
// Both are accepted.
package walrus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
	"github.com/BillDuke13/mnemosyne/pkg/metrics"
)

const (
	serviceName = "walrus"
	opGetBlob   = "get_blob"

	// DefaultTimeout bounds every blob fetch.
	DefaultTimeout = 30 * time.Second
)

// Config is the blob fetcher configuration.
type Config struct {
	// AggregatorURL is the aggregator base URL
	// (e.g., "https://aggregator.walrus-testnet.walrus.space").
	AggregatorURL string

	// Timeout bounds each fetch (defaults to 30s).
	Timeout time.Duration

	Logger *slog.Logger
}

// Fetcher retrieves blobs from a Walrus aggregator.
type Fetcher struct {
	client     *resty.Client
	aggregator string
	logger     *slog.Logger
}

// NewFetcher creates a blob fetcher.
func NewFetcher(c Config) (*Fetcher, error) {
	if c.AggregatorURL == "" {
		return nil, errors.New("aggregator url is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Fetcher{
		client:     resty.New().SetTimeout(timeout),
		aggregator: strings.TrimRight(c.AggregatorURL, "/"),
		logger:     c.Logger,
	}, nil
}

// FetchSummary downloads a blob and extracts its summary text.
func (f *Fetcher) FetchSummary(ctx context.Context, blobID string) (summary string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(serviceName, opGetBlob, start, err) }()

	blobURL := f.aggregator + "/v1/blobs/" + url.PathEscape(blobID)

	resp, err := f.client.R().
		SetContext(ctx).
		Get(blobURL)
	if err != nil {
		return "", &memory.UpstreamError{Service: serviceName, Op: opGetBlob, Err: err}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", &memory.UpstreamError{
			Service:    serviceName,
			Op:         opGetBlob,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("blob %s", blobID),
		}
	}

	f.logger.Debug("fetched blob",
		"blob_id", blobID,
		"bytes", len(resp.Body()),
	)

	return ExtractSummary(resp.Body()), nil
}

// ExtractSummary returns the "summary" string of a JSON object payload, or the
// payload itself as text with invalid UTF-8 sequences replaced by U+FFFD.
func ExtractSummary(payload []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err == nil {
		if raw, ok := envelope["summary"]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				return s
			}
		}
	}

	if utf8.Valid(payload) {
		return string(payload)
	}
	return strings.ToValidUTF8(string(payload), string(utf8.RuneError))
}

var _ memory.SummaryFetcher = (*Fetcher)(nil)
