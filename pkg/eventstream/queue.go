package eventstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/BillDuke13/mnemosyne/pkg/metrics"
)

var (
	// ErrQueueFull is returned by Queue.PublishIdentified when the buffer has
	// no room for another event.
	ErrQueueFull = errors.New("event queue full")

	// ErrQueueClosed is returned by Queue.PublishIdentified after Close.
	ErrQueueClosed = errors.New("event queue closed")
)

var (
	defaultQueueWorkers   uint = 1
	defaultQueueSize      uint = 64
	defaultPublishTimeout      = 15 * time.Second
)

// QueueConfig configures a Queue.
type QueueConfig struct {
	// Publisher receives events on the background workers.
	Publisher Publisher

	// NumWorkers defaults to 1 so events keep their emission order.
	NumWorkers uint

	// QueueSize is the capacity of the event buffer (defaults to 64).
	QueueSize uint

	// Timeout bounds a single publish on the wrapped publisher (defaults to 15s).
	Timeout time.Duration

	Logger *slog.Logger
}

// Queue is a Publisher that buffers events and hands them to another
// Publisher on background workers. PublishIdentified never waits on the
// wrapped publisher.
type Queue struct {
	publisher Publisher
	timeout   time.Duration
	events    chan *IdentifiedEvent
	wg        sync.WaitGroup
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a Queue and starts its workers.
func NewQueue(c QueueConfig) (*Queue, error) {
	if c.Publisher == nil {
		return nil, errors.New("publisher is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultQueueWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultPublishTimeout
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	q := &Queue{
		publisher: c.Publisher,
		timeout:   c.Timeout,
		events:    make(chan *IdentifiedEvent, c.QueueSize),
		logger:    c.Logger,
	}

	q.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go q.worker(i)
	}

	return q, nil
}

// PublishIdentified buffers event for a worker. The caller's context is not
// carried over: publishing outlives the request that produced the event.
func (q *Queue) PublishIdentified(_ context.Context, event *IdentifiedEvent) error {
	if event == nil {
		return ErrNilIdentifiedEvent
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.events <- event:
		return nil
	default:
		metrics.EventDropped()
		return ErrQueueFull
	}
}

// Close stops accepting events, drains the buffer and then closes the
// wrapped publisher. Safe to call more than once.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.events)
	q.mu.Unlock()

	q.wg.Wait()
	return q.publisher.Close()
}

func (q *Queue) worker(id uint) {
	defer q.wg.Done()

	for event := range q.events {
		q.publish(event)
	}

	q.logger.Debug("event worker stopped", "worker_id", id)
}

func (q *Queue) publish(event *IdentifiedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.publisher.PublishIdentified(ctx, event); err != nil {
		q.logger.Warn("failed to publish identified event", "event_id", event.EventID, "error", err)
	}
}

var _ Publisher = (*Queue)(nil)
