// Package sui implements a read-only client for the memory table, a Sui
// dynamic-field table queried over the fullnode JSON-RPC API.
package sui

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

const (
	// DefaultPageSize is the page size used when listing dynamic fields.
	DefaultPageSize = 50

	// DefaultTimeout bounds every RPC call.
	DefaultTimeout = 30 * time.Second
)

// Config is the table client configuration.
type Config struct {
	// RPCURL is the fullnode JSON-RPC endpoint (e.g., "https://fullnode.devnet.sui.io").
	RPCURL string

	// TableID is the object id of the memory table.
	TableID string

	// PageSize is the dynamic field page size (defaults to 50).
	PageSize uint

	// Timeout bounds each RPC call (defaults to 30s).
	Timeout time.Duration

	Logger *slog.Logger
}

// Client reads memory entries from a Sui dynamic-field table.
type Client struct {
	client   *resty.Client
	rpcURL   string
	tableID  string
	pageSize uint
	logger   *slog.Logger
	nextID   atomic.Uint64
}

// NewClient creates a table client.
func NewClient(c Config) (*Client, error) {
	if c.RPCURL == "" {
		return nil, errors.New("rpc url is required")
	}
	if c.TableID == "" {
		return nil, errors.New("table id is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	pageSize := c.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rc := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{
		client:   rc,
		rpcURL:   c.RPCURL,
		tableID:  c.TableID,
		pageSize: pageSize,
		logger:   c.Logger,
	}, nil
}

// TableID returns the table this client reads from.
func (c *Client) TableID() string {
	return c.tableID
}

// dynamicFieldPage is one page of suix_getDynamicFields.
type dynamicFieldPage struct {
	Data []struct {
		Name struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"name"`
	} `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// ListEntryIDs returns the keys of every dynamic field in the table, following
// pagination cursors until the last page.
func (c *Client) ListEntryIDs(ctx context.Context) ([]uint64, error) {
	var (
		ids    []uint64
		cursor *string
	)

	for {
		var page dynamicFieldPage
		params := []any{c.tableID, cursor, c.pageSize}
		if err := c.call(ctx, methodGetDynamicFields, params, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Data {
			id, err := parseU64(item.Name.Value)
			if err != nil {
				return nil, &memory.MalformedRecordError{
					Field:  "name.value",
					Reason: err.Error(),
				}
			}
			ids = append(ids, id)
		}

		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		if cursor != nil && *cursor == *page.NextCursor {
			// A node that hands back the same cursor would loop forever.
			break
		}
		cursor = page.NextCursor
	}

	c.logger.Debug("listed memory table entries",
		"table_id", c.tableID,
		"count", len(ids),
	)

	return ids, nil
}

// FetchEntry loads one memory entry record by its u64 key.
func (c *Client) FetchEntry(ctx context.Context, entryID uint64) (memory.Record, error) {
	key := map[string]string{
		"type":  "u64",
		"value": strconv.FormatUint(entryID, 10),
	}

	var obj objectResponse
	if err := c.call(ctx, methodGetDynamicFieldObject, []any{c.tableID, key}, &obj); err != nil {
		return memory.Record{}, err
	}

	if obj.shape == shapeError {
		return memory.Record{}, &memory.UpstreamError{
			Service: serviceName,
			Op:      methodGetDynamicFieldObject,
			Err:     obj.objectErr,
		}
	}

	rec, err := obj.record(entryID)
	if err != nil {
		return memory.Record{}, err
	}

	c.logger.Debug("fetched memory entry",
		"entry_id", entryID,
		"label", rec.Label,
		"shape", obj.shape.String(),
	)

	return rec, nil
}

var _ memory.TableReader = (*Client)(nil)
