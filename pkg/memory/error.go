package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoCandidates is returned when the table listing yields no entries.
var ErrNoCandidates = errors.New("no memory entries available")

// RPCError is a JSON-RPC error object returned by the table node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// UpstreamError is returned for any transport failure, non-success status or
// RPC-level error from the memory table or the blob store.
type UpstreamError struct {
	// Service names the upstream ("sui" or "walrus").
	Service string

	// Op is the upstream operation (RPC method or blob fetch).
	Op string

	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int

	// RPC carries the embedded JSON-RPC error payload, if any.
	RPC *RPCError

	Err error
}

func (e *UpstreamError) Error() string {
	msg := e.Service + " " + e.Op
	switch {
	case e.RPC != nil:
		msg += ": " + e.RPC.Error()
	case e.StatusCode != 0:
		msg += ": status " + strconv.Itoa(e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// MalformedRecordError is returned when a fetched record lacks required
// structure.
type MalformedRecordError struct {
	EntryID uint64
	Field   string
	Reason  string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record for entry %d: %s %s", e.EntryID, e.Field, e.Reason)
}

// VerificationError is returned when a summary does not hash to the committed
// notes hash.
type VerificationError struct {
	EntryID  uint64
	Expected string
	Actual   string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("summary hash verification failed for entry %d: expected %s, got %s", e.EntryID, e.Expected, e.Actual)
}
