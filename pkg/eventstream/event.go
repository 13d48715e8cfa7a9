package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeEntryIdentified is emitted after a memory entry was resolved and
	// its summary verified.
	EventTypeEntryIdentified = "mnemosyne.entry.identified"
)

// IdentifiedEvent is a transport-neutral event payload for a verified
// identification.
type IdentifiedEvent struct {
	SchemaVersion int           `json:"schema_version"`
	EventType     string        `json:"event_type"`
	EventID       string        `json:"event_id"`
	EmittedAt     time.Time     `json:"emitted_at"`
	Source        EventSource   `json:"source"`
	Request       RequestMeta   `json:"request"`
	Entry         IdentifiedRef `json:"entry"`
}

// EventSource identifies the table the entry was resolved from.
type EventSource struct {
	PackageID    string `json:"package_id,omitempty"`
	MemoryBookID string `json:"memory_book_id,omitempty"`
	TableID      string `json:"table_id"`
}

// RequestMeta captures request lifecycle metadata for the event.
type RequestMeta struct {
	Hint        string    `json:"hint,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Announced   bool      `json:"announced"`
}

// IdentifiedRef references the identified entry. The summary itself is not
// carried; consumers can re-fetch it by blob id and check it against the hash.
type IdentifiedRef struct {
	EntryID      uint64 `json:"entry_id"`
	Label        string `json:"label"`
	Relationship string `json:"relationship"`
	BlobID       string `json:"walrus_blob_id"`
	NotesHashHex string `json:"notes_hash_hex"`
}

// NewIdentifiedEvent stamps a new event with schema, type, id and emission time.
func NewIdentifiedEvent(source EventSource, req RequestMeta, entry IdentifiedRef) *IdentifiedEvent {
	return &IdentifiedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeEntryIdentified,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Request:       req,
		Entry:         entry,
	}
}
