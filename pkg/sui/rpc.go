package sui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
	"github.com/BillDuke13/mnemosyne/pkg/metrics"
)

const (
	serviceName = "sui"
	jsonRPCVer  = "2.0"

	methodGetDynamicFields      = "suix_getDynamicFields"
	methodGetDynamicFieldObject = "suix_getDynamicFieldObject"
)

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope. Exactly one of Result and
// Error is expected to be set.
type rpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id"`
	Result  json.RawMessage  `json:"result"`
	Error   *memory.RPCError `json:"error"`
}

// call issues one JSON-RPC call and decodes its result into out.
func (c *Client) call(ctx context.Context, method string, params []any, out any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(serviceName, method, start, err) }()

	req := rpcRequest{
		JSONRPC: jsonRPCVer,
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	c.logger.Debug("sending rpc request",
		"method", method,
		"id", req.ID,
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&req).
		Post(c.rpcURL)
	if err != nil {
		return &memory.UpstreamError{Service: serviceName, Op: method, Err: err}
	}

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return &memory.UpstreamError{
			Service:    serviceName,
			Op:         method,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected response: %s", truncate(resp.String(), 256)),
		}
	}

	var envelope rpcResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return &memory.UpstreamError{
			Service:    serviceName,
			Op:         method,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("decoding rpc envelope: %w", err),
		}
	}

	if envelope.Error != nil {
		return &memory.UpstreamError{
			Service:    serviceName,
			Op:         method,
			StatusCode: resp.StatusCode(),
			RPC:        envelope.Error,
		}
	}

	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return &memory.UpstreamError{
			Service:    serviceName,
			Op:         method,
			StatusCode: resp.StatusCode(),
			Err:        errors.New("rpc response has no result"),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return &memory.UpstreamError{
			Service:    serviceName,
			Op:         method,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("decoding rpc result: %w", err),
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
