// Package memory resolves a caller's hint to a single memory entry held in the
// on-chain memory table.
//
// An entry is assembled fresh on every resolution from two independent
// upstreams: the table record (label, relationship, blob id, committed notes
// hash) and the blob store summary. Nothing is cached between resolutions.
//
// The [Resolver] only lists, loads and selects. Integrity verification of the
// selected entry belongs to the caller so that resolution and verification stay
// independently testable.
package memory

import (
	"context"
	"encoding/hex"
)

// Record is the table-side projection of a memory entry: everything committed
// on-chain, without the off-chain summary.
type Record struct {
	EntryID               uint64
	Label                 string
	Relationship          string
	BlobID                string
	LastInteractionUnixMs int64

	// NotesHash is the 32-byte SHA3-256 commitment of the summary.
	NotesHash []byte
}

// NotesHashHex returns the committed notes hash as lowercase hex.
func (r Record) NotesHashHex() string {
	return hex.EncodeToString(r.NotesHash)
}

// Entry is a resolved memory entry. The JSON layout is the response body of
// the identify endpoint.
type Entry struct {
	EntryID               uint64 `json:"entry_id"`
	Label                 string `json:"label"`
	Relationship          string `json:"relationship"`
	BlobID                string `json:"walrus_blob_id"`
	LastInteractionUnixMs int64  `json:"last_interaction_unix_ms"`
	NotesHashHex          string `json:"notes_hash_hex"`
	Summary               string `json:"summary"`
}

// NewEntry joins a table record with the summary fetched for it.
func NewEntry(rec Record, summary string) *Entry {
	return &Entry{
		EntryID:               rec.EntryID,
		Label:                 rec.Label,
		Relationship:          rec.Relationship,
		BlobID:                rec.BlobID,
		LastInteractionUnixMs: rec.LastInteractionUnixMs,
		NotesHashHex:          rec.NotesHashHex(),
		Summary:               summary,
	}
}

// EntryHint maps a label to a preferred entry id. Hints are only consulted
// when the caller supplied no hint of their own.
type EntryHint struct {
	Label   string `json:"label" toml:"label" mapstructure:"label"`
	EntryID uint64 `json:"entry_id" toml:"entry_id" mapstructure:"entry_id"`
}

// TableReader reads entry records from the remote memory table.
type TableReader interface {
	// ListEntryIDs returns every entry id currently visible in the table.
	ListEntryIDs(ctx context.Context) ([]uint64, error)

	// FetchEntry loads a single record by entry id.
	FetchEntry(ctx context.Context, entryID uint64) (Record, error)
}

// SummaryFetcher retrieves the summary text for a blob id.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, blobID string) (string, error)
}
