package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/BillDuke13/mnemosyne/pkg/metrics"
	"github.com/BillDuke13/mnemosyne/pkg/utils"
)

var (
	defaultNumWorkers   uint = 1
	defaultJobQueueSize uint = 16
	defaultSpeakTimeout      = 2 * time.Minute
)

// PoolConfig is the configuration options for the announcement pool.
type PoolConfig struct {
	// Speaker renders each announcement.
	Speaker Speaker

	// NumWorkers is the number of background workers (defaults to 1 so
	// announcements are spoken one at a time).
	NumWorkers uint

	// QueueSize is the capacity of the buffered announcement channel (defaults to 16).
	QueueSize uint

	// Timeout bounds a single Speak call (defaults to 2m).
	Timeout time.Duration

	Logger *slog.Logger
}

// Pool is an Announcer that hands text to a Speaker on background workers.
// Announce never blocks: when the queue is full the announcement is dropped.
type Pool struct {
	speaker Speaker
	timeout time.Duration
	queue   chan string
	wg      sync.WaitGroup
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a Pool and starts its worker goroutines.
func NewPool(c PoolConfig) (*Pool, error) {
	if c.Speaker == nil {
		return nil, errors.New("speaker is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultSpeakTimeout
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	p := &Pool{
		speaker: c.Speaker,
		timeout: c.Timeout,
		queue:   make(chan string, c.QueueSize),
		logger:  c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Announce queues text for speaking. The request context is not propagated:
// speech outlives the request that triggered it.
func (p *Pool) Announce(_ context.Context, text string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Debug("announcement dropped, pool closed")
		return
	}

	select {
	case p.queue <- text:
		p.logger.Debug("announcement queued", "length", len(text))
	default:
		metrics.AnnouncementDropped()
		p.logger.Warn("announcement dropped, queue full", "text", utils.Truncate(text, 48))
	}
}

// Close stops accepting announcements and waits for queued ones to drain.
// Safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("speech worker started", "worker_id", id)

	for text := range p.queue {
		p.speak(text)
	}

	p.logger.Debug("speech worker stopped", "worker_id", id)
}

func (p *Pool) speak(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	if err := p.speaker.Speak(ctx, text); err != nil {
		p.logger.Warn("speech failed", "error", err)
		return
	}

	p.logger.Debug("announcement spoken", "duration", time.Since(start))
}

var _ Announcer = (*Pool)(nil)
