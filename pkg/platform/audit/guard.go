package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"flightsurety/pkg/platform/circuit"
)

// GuardedSink shields a mirror sink behind a circuit breaker. While the
// circuit is open events skip the mirror, except for one probe per probe
// interval; mirror failures are logged and never returned.
type GuardedSink struct {
	sink          Sink
	breaker       *circuit.Breaker
	logger        *slog.Logger
	probeInterval time.Duration
	now           func() time.Time

	mu        sync.Mutex
	lastProbe time.Time
	skipped   uint64
}

type GuardOption func(*GuardedSink)

func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *GuardedSink) {
		g.logger = logger
	}
}

func WithProbeInterval(d time.Duration) GuardOption {
	return func(g *GuardedSink) {
		g.probeInterval = d
	}
}

func NewGuardedSink(sink Sink, breaker *circuit.Breaker, opts ...GuardOption) *GuardedSink {
	g := &GuardedSink{
		sink:          sink,
		breaker:       breaker,
		probeInterval: 5 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GuardedSink) Append(ctx context.Context, event Event) error {
	if g.breaker.IsOpen() && !g.probeDue() {
		g.mu.Lock()
		g.skipped++
		g.mu.Unlock()
		return nil
	}

	if err := g.sink.Append(ctx, event); err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened && g.logger != nil {
			g.logger.WarnContext(ctx, "event mirror unavailable, circuit opened",
				"breaker", g.breaker.Name(),
				"error", err,
			)
		}
		return nil
	}

	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.mu.Lock()
		skipped := g.skipped
		g.skipped = 0
		g.mu.Unlock()
		if g.logger == nil {
			return nil
		}
		g.logger.InfoContext(ctx, "event mirror recovered, circuit closed",
			"breaker", g.breaker.Name(),
			"skipped_events", skipped,
		)
	}
	return nil
}

// Skipped returns how many events bypassed the mirror since it last recovered.
func (g *GuardedSink) Skipped() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.skipped
}

func (g *GuardedSink) probeDue() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if now.Sub(g.lastProbe) < g.probeInterval {
		return false
	}
	g.lastProbe = now
	return true
}
