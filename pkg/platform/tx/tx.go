// Package tx provides the single-writer boundary every ledger mutation runs in.
//
// All state-changing operations are serialized through one process-wide lock
// so that each top-level operation is observed as a single atomic step in a
// total order. Reads share a read lock and never observe a half-applied write.
package tx

import (
	"context"
	"sync"
	"time"

	dErrors "flightsurety/pkg/domain-errors"
)

type ctxKey struct{}

var txKey = ctxKey{}

// Serializer is the in-memory coarse lock behind RunInTx.
type Serializer struct {
	mu      sync.RWMutex
	timeout time.Duration
}

type Option func(*Serializer)

// WithTimeout bounds transactions whose context carries no deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Serializer) {
		s.timeout = d
	}
}

// NewSerializer returns a ready Serializer.
func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunInTx runs fn holding the write lock. A context that is already inside a
// transaction is rejected instead of deadlocking: nested mutating calls (for
// example a funding fallback re-entering Fund) are refused outright.
func (s *Serializer) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return dErrors.New(dErrors.CodeReentrancy, "nested mutating call rejected")
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return fn(context.WithValue(ctx, txKey, true))
}

// View runs fn under the read lock. Inside a transaction the write lock is
// already held, so fn runs directly.
func (s *Serializer) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx)
}

// InTx reports whether ctx was produced by RunInTx.
func InTx(ctx context.Context) bool {
	in, _ := ctx.Value(txKey).(bool)
	return in
}
