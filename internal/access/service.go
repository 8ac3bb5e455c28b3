// Package access implements the gate every ledger operation passes through:
// the operational switch, the immutable owner and the trusted-caller
// allow-list.
package access

import (
	"context"
	"log/slog"
	"strconv"

	"flightsurety/internal/platform/observability"
	"flightsurety/pkg/domain"
	dErrors "flightsurety/pkg/domain-errors"
	audit "flightsurety/pkg/platform/audit"
)

// AllowlistStore persists the trusted collaborator identities.
type AllowlistStore interface {
	Add(ctx context.Context, id domain.CallerID) error
	Remove(ctx context.Context, id domain.CallerID) error
	Contains(ctx context.Context, id domain.CallerID) (bool, error)
	List(ctx context.Context) ([]domain.CallerID, error)
}

// TxRunner is the single-writer boundary.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	View(ctx context.Context, fn func(ctx context.Context) error) error
}

type Gate struct {
	owner       domain.PrincipalID
	operational bool
	enforce     bool
	allowlist   AllowlistStore
	tx          TxRunner
	logger      *slog.Logger
	publisher   observability.Publisher
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithAuditPublisher(publisher observability.Publisher) Option {
	return func(g *Gate) {
		g.publisher = publisher
	}
}

// WithEnforcedAllowlist makes RequireAuthorizedCaller reject callers that are
// not on the allow-list. Without it the check is recorded but advisory.
func WithEnforcedAllowlist(enforce bool) Option {
	return func(g *Gate) {
		g.enforce = enforce
	}
}

// New constructs an operational gate owned by owner.
func New(owner domain.PrincipalID, allowlist AllowlistStore, tx TxRunner, opts ...Option) (*Gate, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "owner is required")
	}
	if allowlist == nil || tx == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "allowlist store and tx runner are required")
	}
	g := &Gate{
		owner:       owner,
		operational: true,
		allowlist:   allowlist,
		tx:          tx,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gate) Owner() domain.PrincipalID {
	return g.owner
}

func (g *Gate) Enforcing() bool {
	return g.enforce
}

func (g *Gate) IsOperational(ctx context.Context) bool {
	var operational bool
	_ = g.tx.View(ctx, func(context.Context) error {
		operational = g.operational
		return nil
	})
	return operational
}

// SetOperational is the one administrative toggle. It is owner-only and is
// accepted while the system is paused.
func (g *Gate) SetOperational(ctx context.Context, caller domain.CallerID, mode bool) error {
	return g.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := g.requireOwner(caller); err != nil {
			return err
		}
		before := g.operational
		g.operational = mode
		observability.LogAudit(ctx, g.logger, g.publisher, audit.EventOperationalChanged,
			"caller", caller.String(),
			"subject_caller", g.owner.String(),
			"before", strconv.FormatBool(before),
			"after", strconv.FormatBool(mode),
		)
		return nil
	})
}

// AuthorizeCaller adds id to the allow-list. Like every gated operation it
// checks the operational flag before the caller.
func (g *Gate) AuthorizeCaller(ctx context.Context, caller, id domain.CallerID) error {
	if id.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "caller id is required")
	}
	return g.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := g.RequireOperational(ctx); err != nil {
			return err
		}
		if err := g.requireOwner(caller); err != nil {
			return err
		}
		if err := g.allowlist.Add(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update allow-list")
		}
		observability.LogAudit(ctx, g.logger, g.publisher, audit.EventCallerAuthorized,
			"caller", caller.String(),
			"subject_caller", id.String(),
			"after", "true",
		)
		return nil
	})
}

// IsCallerAuthorized is a pure allow-list lookup.
func (g *Gate) IsCallerAuthorized(ctx context.Context, id domain.CallerID) (bool, error) {
	var ok bool
	err := g.tx.View(ctx, func(ctx context.Context) error {
		var err error
		ok, err = g.allowlist.Contains(ctx, id)
		return err
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read allow-list")
	}
	return ok, nil
}

// AuthorizedCallers lists the allow-list.
func (g *Gate) AuthorizedCallers(ctx context.Context) ([]domain.CallerID, error) {
	var ids []domain.CallerID
	err := g.tx.View(ctx, func(ctx context.Context) error {
		var err error
		ids, err = g.allowlist.List(ctx)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list allow-list")
	}
	return ids, nil
}

func (g *Gate) RequireOperational(ctx context.Context) error {
	if !g.IsOperational(ctx) {
		return dErrors.New(dErrors.CodeNotOperational, "contract is currently not operational")
	}
	return nil
}

// RequireAuthorizedCaller records a caller_checked event for every check.
// It rejects only when enforcement is enabled.
func (g *Gate) RequireAuthorizedCaller(ctx context.Context, caller domain.CallerID, operation string) error {
	ok, err := g.IsCallerAuthorized(ctx, caller)
	if err != nil {
		return err
	}

	decision := "allowed"
	switch {
	case ok:
	case g.enforce:
		decision = "denied"
	default:
		decision = "advisory"
	}
	observability.LogAudit(ctx, g.logger, g.publisher, audit.EventCallerChecked,
		"caller", caller.String(),
		"subject_caller", caller.String(),
		"operation", operation,
		"after", strconv.FormatBool(ok),
		"decision", decision,
		"reason", operation,
	)

	if !ok && g.enforce {
		return dErrors.New(dErrors.CodeCallerNotAuthorized, "caller is not authorized")
	}
	return nil
}

// Bootstrap seeds the allow-list at construction time. It bypasses the owner
// check and is only called by the ledger while it initializes. Every id is
// validated before the first write; if a write fails, the callers added so far
// are removed again. The returned undo removes them when a later step of the
// initialization fails.
func (g *Gate) Bootstrap(ctx context.Context, callers []domain.CallerID) (undo func(context.Context), err error) {
	for _, id := range callers {
		if id.IsNil() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "caller id is required")
		}
	}

	var added []domain.CallerID
	undo = func(ctx context.Context) {
		for _, id := range added {
			if rmErr := g.allowlist.Remove(ctx, id); rmErr != nil && g.logger != nil {
				g.logger.ErrorContext(ctx, "failed to roll back allow-list seed",
					"subject_caller", id.String(),
					"error", rmErr,
				)
			}
		}
	}
	for _, id := range callers {
		present, err := g.allowlist.Contains(ctx, id)
		if err != nil {
			undo(ctx)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read allow-list")
		}
		if present {
			continue
		}
		if err := g.allowlist.Add(ctx, id); err != nil {
			undo(ctx)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed allow-list")
		}
		added = append(added, id)
	}

	for _, id := range added {
		observability.LogAudit(ctx, g.logger, g.publisher, audit.EventCallerAuthorized,
			"caller", g.owner.String(),
			"subject_caller", id.String(),
			"after", "true",
			"reason", "bootstrap",
		)
	}
	return undo, nil
}

func (g *Gate) requireOwner(caller domain.CallerID) error {
	if caller.Principal() != g.owner {
		return dErrors.New(dErrors.CodeNotOwner, "caller is not contract owner")
	}
	return nil
}
