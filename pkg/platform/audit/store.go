package audit

import (
	"context"
	"errors"
)

// Sink accepts events. Streaming backends are write-only sinks.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a Sink that can also be queried.
type Store interface {
	Sink
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Tee writes every event to a primary Store and then to each mirror sink.
// Queries are served by the primary.
type Tee struct {
	primary Store
	mirrors []Sink
}

// NewTee builds a Tee. Nil mirrors are skipped.
func NewTee(primary Store, mirrors ...Sink) *Tee {
	t := &Tee{primary: primary}
	for _, m := range mirrors {
		if m != nil {
			t.mirrors = append(t.mirrors, m)
		}
	}
	return t
}

// Append writes to the primary first; mirror failures are joined and returned
// after every mirror has been attempted.
func (t *Tee) Append(ctx context.Context, event Event) error {
	if err := t.primary.Append(ctx, event); err != nil {
		return err
	}
	var errs []error
	for _, m := range t.mirrors {
		if err := m.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Tee) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	return t.primary.ListBySubject(ctx, subject)
}

func (t *Tee) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return t.primary.ListRecent(ctx, limit)
}
