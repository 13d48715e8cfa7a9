// Package kafka publishes identification events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/BillDuke13/mnemosyne/pkg/eventstream"
)

const defaultWriteTimeout = 10 * time.Second

// messageWriter is the subset of *kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config is the configuration for a Kafka Publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic receives one message per identified event.
	Topic string

	// WriteTimeout bounds a single publish (defaults to 10s).
	WriteTimeout time.Duration

	Logger *slog.Logger
}

// Publisher writes events as JSON messages keyed by entry id, so every event
// for an entry lands on the same partition.
type Publisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewPublisher creates a Publisher backed by a kafka-go Writer.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
	}

	return newPublisher(w, c)
}

func newPublisher(w messageWriter, c Config) (*Publisher, error) {
	if c.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	timeout := c.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	return &Publisher{
		writer:  w,
		topic:   c.Topic,
		timeout: timeout,
		logger:  c.Logger,
	}, nil
}

// PublishIdentified serializes the event and writes it to the topic.
func (p *Publisher) PublishIdentified(ctx context.Context, event *eventstream.IdentifiedEvent) error {
	if event == nil {
		return eventstream.ErrNilIdentifiedEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling identified event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafkago.Message{
		Key:   []byte(strconv.FormatUint(event.Entry.EntryID, 10)),
		Value: payload,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: []byte(strconv.Itoa(event.SchemaVersion))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event %s to %s: %w", event.EventID, p.topic, err)
	}

	p.logger.Debug("published identified event",
		"event_id", event.EventID,
		"entry_id", event.Entry.EntryID,
		"topic", p.topic,
	)

	return nil
}

// Close flushes pending writes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
