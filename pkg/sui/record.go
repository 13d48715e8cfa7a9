package sui

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/BillDuke13/mnemosyne/pkg/integrity"
	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

// objectShape tags which response layout a dynamic field object arrived in.
type objectShape int

const (
	shapeUnknown objectShape = iota

	// shapeWrapped is result.data.content.
	shapeWrapped

	// shapeDirect is result.content.
	shapeDirect

	// shapeError is result.error, e.g. dynamicFieldNotFound.
	shapeError
)

func (s objectShape) String() string {
	switch s {
	case shapeWrapped:
		return "wrapped"
	case shapeDirect:
		return "direct"
	case shapeError:
		return "error"
	default:
		return "unknown"
	}
}

// objectError is the object-level error a node returns for a missing field.
type objectError struct {
	Code  string          `json:"code"`
	Extra json.RawMessage `json:"-"`
}

func (e *objectError) Error() string {
	if e.Code == "" {
		return "object error: " + string(e.Extra)
	}
	return "object error: " + e.Code
}

// moveObject is the content of a dynamic field object. Only the path down to
// the entry's fields is decoded.
type moveObject struct {
	Fields *struct {
		Value *struct {
			Fields *entryFields `json:"fields"`
		} `json:"value"`
	} `json:"fields"`
}

// entryFields are the Move struct fields of a memory entry.
type entryFields struct {
	Label                 *string         `json:"label"`
	Relationship          *string         `json:"relationship"`
	WalrusBlobID          *string         `json:"walrus_blob_id"`
	LastInteractionUnixMs json.RawMessage `json:"last_interaction_unix_ms"`
	NotesHash             json.RawMessage `json:"notes_hash"`
}

// objectResponse is the result of suix_getDynamicFieldObject, resolved once
// into one of its shapes.
type objectResponse struct {
	shape     objectShape
	content   *moveObject
	objectErr *objectError
}

func (o *objectResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data *struct {
			Content *moveObject `json:"content"`
		} `json:"data"`
		Content *moveObject     `json:"content"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch {
	case raw.Data != nil:
		o.shape = shapeWrapped
		o.content = raw.Data.Content
	case raw.Content != nil:
		o.shape = shapeDirect
		o.content = raw.Content
	case len(raw.Error) > 0 && !bytes.Equal(raw.Error, []byte("null")):
		o.shape = shapeError
		o.objectErr = &objectError{Extra: raw.Error}
		_ = json.Unmarshal(raw.Error, o.objectErr)
	default:
		o.shape = shapeUnknown
	}

	return nil
}

// record converts the decoded object into a memory.Record.
func (o *objectResponse) record(entryID uint64) (memory.Record, error) {
	malformed := func(field, reason string) error {
		return &memory.MalformedRecordError{EntryID: entryID, Field: field, Reason: reason}
	}

	if o.content == nil {
		return memory.Record{}, malformed("content", "is missing")
	}
	if o.content.Fields == nil {
		return memory.Record{}, malformed("content.fields", "is missing")
	}
	if o.content.Fields.Value == nil || o.content.Fields.Value.Fields == nil {
		return memory.Record{}, malformed("content.fields.value.fields", "is missing")
	}

	f := o.content.Fields.Value.Fields
	switch {
	case f.Label == nil:
		return memory.Record{}, malformed("label", "is missing")
	case f.Relationship == nil:
		return memory.Record{}, malformed("relationship", "is missing")
	case f.WalrusBlobID == nil:
		return memory.Record{}, malformed("walrus_blob_id", "is missing")
	case len(f.LastInteractionUnixMs) == 0:
		return memory.Record{}, malformed("last_interaction_unix_ms", "is missing")
	case len(f.NotesHash) == 0:
		return memory.Record{}, malformed("notes_hash", "is missing")
	}

	lastMs, err := parseU64(f.LastInteractionUnixMs)
	if err != nil {
		return memory.Record{}, malformed("last_interaction_unix_ms", err.Error())
	}
	if lastMs > math.MaxInt64 {
		return memory.Record{}, malformed("last_interaction_unix_ms", "overflows int64")
	}

	notesHash, err := parseBytes(f.NotesHash)
	if err != nil {
		return memory.Record{}, malformed("notes_hash", err.Error())
	}
	if len(notesHash) != integrity.DigestSize {
		return memory.Record{}, malformed("notes_hash", fmt.Sprintf("has %d bytes, want %d", len(notesHash), integrity.DigestSize))
	}

	return memory.Record{
		EntryID:               entryID,
		Label:                 *f.Label,
		Relationship:          *f.Relationship,
		BlobID:                *f.WalrusBlobID,
		LastInteractionUnixMs: int64(lastMs),
		NotesHash:             notesHash,
	}, nil
}

// parseU64 decodes a u64 that the node may render as a JSON string or number.
func parseU64(raw json.RawMessage) (uint64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, fmt.Errorf("not an unsigned integer: %s", raw)
		}
		s = n.String()
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer: %q", s)
	}
	return v, nil
}

// parseBytes decodes a vector<u8>, rendered either as an array of numbers or
// as a hex string.
func parseBytes(raw json.RawMessage) ([]byte, error) {
	var nums []int
	if err := json.Unmarshal(raw, &nums); err == nil {
		out := make([]byte, len(nums))
		for i, n := range nums {
			if n < 0 || n > 255 {
				return nil, fmt.Errorf("byte %d out of range: %d", i, n)
			}
			out[i] = byte(n)
		}
		return out, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.New("is neither a byte array nor a hex string")
	}

	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}
