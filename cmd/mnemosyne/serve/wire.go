package servecmder

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BillDuke13/mnemosyne/pkg/config"
	"github.com/BillDuke13/mnemosyne/pkg/eventstream"
	"github.com/BillDuke13/mnemosyne/pkg/eventstream/kafka"
	"github.com/BillDuke13/mnemosyne/pkg/eventstream/nop"
	"github.com/BillDuke13/mnemosyne/pkg/identify"
	"github.com/BillDuke13/mnemosyne/pkg/memory"
	"github.com/BillDuke13/mnemosyne/pkg/notifier"
	"github.com/BillDuke13/mnemosyne/pkg/sui"
	"github.com/BillDuke13/mnemosyne/pkg/walrus"
)

// stack is everything the serve command builds from configuration.
type stack struct {
	service   *identify.Service
	pool      *notifier.Pool
	publisher eventstream.Publisher
}

// Close stops the announcement workers, drains queued events and closes the
// publisher.
func (s *stack) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Close()
}

// newStack wires the table client, blob fetcher, resolver, speech and event
// publisher into an identify service.
func newStack(cfg *config.Config, logger *slog.Logger) (*stack, error) {
	table, err := sui.NewClient(sui.Config{
		RPCURL:   cfg.Chain.RPC,
		TableID:  cfg.Chain.TableID,
		PageSize: cfg.Chain.PageSize,
		Timeout:  cfg.HTTP.Timeout,
		Logger:   logger.With("component", "sui"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating sui client: %w", err)
	}

	blobs, err := walrus.NewFetcher(walrus.Config{
		AggregatorURL: cfg.Walrus.Aggregator,
		Timeout:       cfg.HTTP.Timeout,
		Logger:        logger.With("component", "walrus"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating walrus fetcher: %w", err)
	}

	resolver, err := memory.NewResolver(memory.ResolverConfig{
		Table:       table,
		Blobs:       blobs,
		Hints:       cfg.Hints,
		Concurrency: int(cfg.Resolver.Concurrency),
		Logger:      logger.With("component", "resolver"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating resolver: %w", err)
	}

	s := &stack{}

	speaker, err := newSpeaker(cfg.Speech, logger.With("component", "speech"))
	if err != nil {
		return nil, err
	}

	var announcer notifier.Announcer = notifier.Nop{}
	if speaker != nil {
		s.pool, err = notifier.NewPool(notifier.PoolConfig{
			Speaker: speaker,
			Logger:  logger.With("component", "speech"),
		})
		if err != nil {
			return nil, fmt.Errorf("creating speech pool: %w", err)
		}
		announcer = s.pool
	}

	s.publisher, err = newPublisher(cfg.EventStream, logger.With("component", "eventstream"))
	if err != nil {
		s.Close()
		return nil, err
	}

	s.service, err = identify.NewService(identify.Config{
		Resolver:  resolver,
		Table:     table,
		Announcer: announcer,
		Publisher: s.publisher,
		Source: eventstream.EventSource{
			PackageID:    cfg.Chain.PackageID,
			MemoryBookID: cfg.Chain.MemoryBookID,
			TableID:      cfg.Chain.TableID,
		},
		Logger: logger,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating identify service: %w", err)
	}

	return s, nil
}

// newSpeaker returns the configured speech backend, or nil when speech is
// disabled.
func newSpeaker(c config.SpeechConfig, logger *slog.Logger) (notifier.Speaker, error) {
	if !c.Enabled {
		return nil, nil
	}

	switch c.Backend {
	case config.SpeechBackendSay:
		argv := strings.Fields(c.Command)
		if len(argv) == 0 {
			return nil, errors.New("speech.command is required for the say backend")
		}
		return notifier.NewCommandSpeaker(argv, logger), nil

	case config.SpeechBackendOpenAI:
		speaker, err := notifier.NewOpenAISpeaker(notifier.OpenAIConfig{
			APIKey: c.OpenAIAPIKey,
			Model:  c.OpenAIModel,
			Voice:  c.OpenAIVoice,
			Player: strings.Fields(c.Player),
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating openai speaker: %w", err)
		}
		return speaker, nil

	default:
		return nil, fmt.Errorf("unknown speech backend: %q", c.Backend)
	}
}

// newPublisher returns a queued Kafka publisher when brokers are configured
// and the no-op publisher otherwise.
func newPublisher(c config.EventStreamConfig, logger *slog.Logger) (eventstream.Publisher, error) {
	if len(c.KafkaBrokers) == 0 {
		return nop.NewPublisher(), nil
	}

	p, err := kafka.NewPublisher(kafka.Config{
		Brokers: c.KafkaBrokers,
		Topic:   c.KafkaTopic,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	q, err := eventstream.NewQueue(eventstream.QueueConfig{
		Publisher: p,
		Logger:    logger,
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("creating event queue: %w", err)
	}

	logger.Info("publishing identification events", "brokers", c.KafkaBrokers, "topic", c.KafkaTopic)
	return q, nil
}
