// Package publisher fans ledger events out to an audit store.
//
// In sync mode (the default) Emit blocks until the store accepted the event,
// so the event stream is totally ordered with the operations that produced it.
// In async mode events go through a bounded buffer drained by a single worker,
// which keeps arrival order; events are dropped, never blocked on, when the
// buffer is full.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/audit/worker"
)

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("publisher closed")

type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	sampler *Sampler

	bufferSize int
	inbox      chan audit.Event
	done       chan struct{}
	cancel     context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given buffer.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithSampler samples operations-category events.
func WithSampler(s *Sampler) Option {
	return func(p *Publisher) {
		p.sampler = s
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		w := worker.NewWorker(store, p.inbox,
			worker.WithLogger(p.logger),
			worker.WithErrorHook(func(audit.Event, error) { p.incPersistFailures() }),
		)
		go func() {
			defer close(p.done)
			_ = w.Run(ctx)
		}()
	}
	return p
}

// Emit stamps and publishes an event. The category is always derived from the
// action so the category map stays the single source of truth.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if event.Category == audit.CategoryOperations && p.sampler != nil && !p.sampler.ShouldSample(event.Action) {
		if p.metrics != nil {
			p.metrics.Sampled.Inc()
		}
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if p.metrics != nil {
		p.metrics.Emitted.WithLabelValues(string(event.Category)).Inc()
	}

	if p.inbox == nil {
		if err := p.store.Append(ctx, event); err != nil {
			p.incPersistFailures()
			return err
		}
		return nil
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.metrics != nil {
			p.metrics.Dropped.Inc()
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "event buffer full, dropping event",
				"action", event.Action,
				"subject", event.Subject,
			)
		}
		return nil
	}
}

// List returns a subject's events from the backing store.
func (p *Publisher) List(ctx context.Context, subject string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

// Recent returns the latest events from the backing store.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close stops accepting events and, in async mode, drains the buffer.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
		p.cancel()
	}
}

func (p *Publisher) incPersistFailures() {
	if p.metrics != nil {
		p.metrics.PersistFailures.Inc()
	}
}
