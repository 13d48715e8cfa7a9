// Package identify is the request boundary shared by the HTTP API, the MCP
// tool and the CLI: resolve a hint, verify the summary, announce it and
// publish an identification event.
package identify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BillDuke13/mnemosyne/pkg/eventstream"
	"github.com/BillDuke13/mnemosyne/pkg/eventstream/nop"
	"github.com/BillDuke13/mnemosyne/pkg/integrity"
	"github.com/BillDuke13/mnemosyne/pkg/memory"
	"github.com/BillDuke13/mnemosyne/pkg/metrics"
	"github.com/BillDuke13/mnemosyne/pkg/notifier"
)

// Resolver selects a memory entry for a hint.
type Resolver interface {
	Resolve(ctx context.Context, hint string) (*memory.Entry, error)
}

// Lister lists the entry ids currently in the memory table.
type Lister interface {
	ListEntryIDs(ctx context.Context) ([]uint64, error)
}

// Config is the configuration for a Service.
type Config struct {
	Resolver Resolver

	// Table is used for the live entry count.
	Table Lister

	// Announcer speaks verified entries. Defaults to notifier.Nop.
	Announcer notifier.Announcer

	// Publisher receives an event per verified identification and is called
	// inline. Put a network publisher behind eventstream.Queue. Defaults to
	// the no-op publisher.
	Publisher eventstream.Publisher

	// Source is stamped on every published event.
	Source eventstream.EventSource

	Logger *slog.Logger
}

// Service runs identifications.
type Service struct {
	resolver  Resolver
	table     Lister
	announcer notifier.Announcer
	publisher eventstream.Publisher
	source    eventstream.EventSource
	logger    *slog.Logger
}

// NewService creates a Service.
func NewService(c Config) (*Service, error) {
	if c.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if c.Table == nil {
		return nil, errors.New("table lister is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	announcer := c.Announcer
	if announcer == nil {
		announcer = notifier.Nop{}
	}
	publisher := c.Publisher
	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	return &Service{
		resolver:  c.Resolver,
		table:     c.Table,
		announcer: announcer,
		publisher: publisher,
		source:    c.Source,
		logger:    c.Logger,
	}, nil
}

// Identify resolves hint to an entry and verifies its summary against the
// committed notes hash. Only a verified entry is announced, published and
// returned.
func (s *Service) Identify(ctx context.Context, hint string) (*memory.Entry, error) {
	start := time.Now()

	entry, err := s.identify(ctx, hint)
	metrics.ObserveIdentify(Outcome(err))
	if err != nil {
		s.logger.Error("identify failed", "hint", hint, "error", err)
		return nil, err
	}

	s.announcer.Announce(ctx, notifier.Text(entry.Relationship, entry.Label, entry.Summary))
	_, silent := s.announcer.(notifier.Nop)
	s.publish(ctx, hint, entry, start, !silent)

	s.logger.Info("identified memory entry",
		"entry_id", entry.EntryID,
		"label", entry.Label,
		"duration", time.Since(start),
	)

	return entry, nil
}

func (s *Service) identify(ctx context.Context, hint string) (*memory.Entry, error) {
	entry, err := s.resolver.Resolve(ctx, hint)
	if err != nil {
		return nil, err
	}

	if !integrity.Verify(entry.Summary, entry.NotesHashHex) {
		return nil, &memory.VerificationError{
			EntryID:  entry.EntryID,
			Expected: entry.NotesHashHex,
			Actual:   integrity.DigestHex(entry.Summary),
		}
	}

	return entry, nil
}

func (s *Service) publish(ctx context.Context, hint string, entry *memory.Entry, start time.Time, announced bool) {
	now := time.Now().UTC()
	event := eventstream.NewIdentifiedEvent(
		s.source,
		eventstream.RequestMeta{
			Hint:        hint,
			StartedAt:   start.UTC(),
			CompletedAt: now,
			DurationMs:  now.Sub(start).Milliseconds(),
			Announced:   announced,
		},
		eventstream.IdentifiedRef{
			EntryID:      entry.EntryID,
			Label:        entry.Label,
			Relationship: entry.Relationship,
			BlobID:       entry.BlobID,
			NotesHashHex: entry.NotesHashHex,
		},
	)

	if err := s.publisher.PublishIdentified(ctx, event); err != nil {
		s.logger.Warn("failed to publish identified event",
			"event_id", event.EventID,
			"error", err,
		)
	}
}

// EntryCount returns the number of entries currently listed in the table.
func (s *Service) EntryCount(ctx context.Context) (int, error) {
	ids, err := s.table.ListEntryIDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Outcome classifies an identify error into a metrics outcome label.
func Outcome(err error) string {
	var (
		upstream     *memory.UpstreamError
		malformed    *memory.MalformedRecordError
		verification *memory.VerificationError
	)

	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, memory.ErrNoCandidates):
		return metrics.OutcomeNoCandidates
	case errors.As(err, &verification):
		return metrics.OutcomeVerification
	case errors.As(err, &malformed):
		return metrics.OutcomeMalformed
	case errors.As(err, &upstream):
		return metrics.OutcomeUpstream
	default:
		return metrics.OutcomeError
	}
}
