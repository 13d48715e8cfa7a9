package memory

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// ResolverConfig is the configuration for a Resolver.
type ResolverConfig struct {
	// Table reads entry records from the memory table.
	Table TableReader

	// Blobs fetches entry summaries from the blob store.
	Blobs SummaryFetcher

	// Hints is the ordered fallback mapping consulted when the caller gives
	// no hint. May be empty.
	Hints []EntryHint

	// Concurrency bounds the number of entries loaded at once (defaults to 8).
	Concurrency int

	Logger *slog.Logger
}

// Resolver lists, loads and selects memory entries.
type Resolver struct {
	table       TableReader
	blobs       SummaryFetcher
	hints       []EntryHint
	concurrency int
	logger      *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(c ResolverConfig) (*Resolver, error) {
	if c.Table == nil {
		return nil, errors.New("table reader is required")
	}
	if c.Blobs == nil {
		return nil, errors.New("summary fetcher is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	hints := make([]EntryHint, len(c.Hints))
	copy(hints, c.Hints)

	return &Resolver{
		table:       c.Table,
		blobs:       c.Blobs,
		hints:       hints,
		concurrency: concurrency,
		logger:      c.Logger,
	}, nil
}

// Resolve returns the entry that best matches hint. An empty hint falls back
// to the configured hint mapping, then to the first listed entry.
//
// Every listed entry is loaded before selection; any single failure aborts the
// whole resolution.
func (r *Resolver) Resolve(ctx context.Context, hint string) (*Entry, error) {
	ids, err := r.table.ListEntryIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoCandidates
	}

	candidates, err := r.loadAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	entry := r.selectEntry(candidates, hint)
	r.logger.Debug("resolved memory entry",
		"hint", hint,
		"entry_id", entry.EntryID,
		"label", entry.Label,
		"candidates", len(candidates),
	)

	return entry, nil
}

// loadAll fetches the record and summary for every id. The returned slice is in
// listing order.
func (r *Resolver) loadAll(ctx context.Context, ids []uint64) ([]*Entry, error) {
	candidates := make([]*Entry, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			entry, err := r.load(gctx, id)
			if err != nil {
				return err
			}
			candidates[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return candidates, nil
}

func (r *Resolver) load(ctx context.Context, id uint64) (*Entry, error) {
	rec, err := r.table.FetchEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	summary, err := r.blobs.FetchSummary(ctx, rec.BlobID)
	if err != nil {
		return nil, err
	}

	return NewEntry(rec, summary), nil
}

// selectEntry applies the selection policy: direct hint, then hint mapping in
// configured order, then listing order. candidates must be non-empty.
func (r *Resolver) selectEntry(candidates []*Entry, hint string) *Entry {
	if hint != "" {
		for _, c := range candidates {
			if strings.EqualFold(c.Label, hint) {
				return c
			}
		}
	}

	for _, h := range r.hints {
		for _, c := range candidates {
			if c.EntryID == h.EntryID || c.Label == h.Label {
				return c
			}
		}
	}

	return candidates[0]
}
