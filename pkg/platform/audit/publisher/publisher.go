package publisher

import (
	"context"
	"log/slog"
	"sync"

	dErrors "authguard/pkg/domain-errors"
	audit "authguard/pkg/platform/audit"
)

var (
	errClosed     = dErrors.New(dErrors.CodeInternal, "audit publisher closed")
	errBufferFull = dErrors.New(dErrors.CodeInternal, "audit buffer full")
)

// Publisher normalizes events and hands them to an audit.Store, either inline
// or through a bounded queue drained by one goroutine.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	queue chan audit.Event
	done  chan struct{}

	mu     sync.RWMutex // guards closed against sends on a closed queue
	closed bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues up to size events. Emit drops events once the queue
// is full rather than blocking the caller.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan audit.Event, size)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.queue {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"subject", event.Subject,
			)
		}
	}
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event.Normalize()

	p.mu.RLock()
	defer p.mu.RUnlock()
	switch {
	case p.closed:
		return errClosed
	case p.queue == nil:
		return p.store.Append(ctx, event)
	}

	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.Warn("audit buffer full, event dropped", "action", event.Action, "subject", event.Subject)
		return errBufferFull
	}
}

// Close stops accepting events and, in async mode, waits for the queue to
// drain. It is safe to call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	wasClosed := p.closed
	p.closed = true
	p.mu.Unlock()

	if wasClosed || p.queue == nil {
		return
	}
	close(p.queue)
	<-p.done
}
