package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/BillDuke13/mnemosyne/pkg/memory"
)

// ParseEntryHints parses a JSON object mapping labels to entry ids, e.g.
// {"Family1-Dad":0,"Family1-Mom":1}. Key order is preserved; it is the order
// in which the resolver consults the mapping.
func ParseEntryHints(raw string) ([]memory.EntryHint, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing entry hints: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("parsing entry hints: expected a JSON object")
	}

	hints := []memory.EntryHint{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing entry hints: %w", err)
		}
		label, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parsing entry hints: unexpected key %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing entry hints: %w", err)
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return nil, fmt.Errorf("parsing entry hints: entry id for %q must be a number", label)
		}
		id, err := strconv.ParseUint(num.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing entry hints: entry id for %q: %w", label, err)
		}

		hints = append(hints, memory.EntryHint{Label: label, EntryID: id})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing entry hints: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parsing entry hints: trailing data after object")
	}

	return hints, nil
}

// FormatEntryHints renders hints in the form accepted by ParseEntryHints.
func FormatEntryHints(hints []memory.EntryHint) string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, h := range hints {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, _ := json.Marshal(h.Label)
		buf.Write(label)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatUint(h.EntryID, 10))
	}
	buf.WriteByte('}')
	return buf.String()
}
