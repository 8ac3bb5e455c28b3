// Package observability provides the audit logging helper shared by the
// ledger modules.
package observability

import (
	"context"
	"log/slog"

	"flightsurety/pkg/attrs"
	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/requestcontext"
)

// Publisher is the event sink the helper emits to.
type Publisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs a state transition and emits it on the event stream.
// Subject, actor, before/after, decision and reason are lifted from attrList
// so call sites only list their key-value pairs once. Emission failures are
// logged; they never fail the operation that produced the event.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Publisher, event audit.AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	args := append(attrList, "event", string(event), "log_type", "audit")
	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}

	if publisher == nil {
		return
	}
	err := publisher.Emit(ctx, audit.Event{
		Action:    string(event),
		Timestamp: requestcontext.Now(ctx),
		Subject:   extractSubject(attrList),
		ActorID:   attrs.ExtractString(attrList, "caller"),
		Before:    attrs.ExtractString(attrList, "before"),
		After:     attrs.ExtractString(attrList, "after"),
		Decision:  attrs.ExtractString(attrList, "decision"),
		Reason:    attrs.ExtractString(attrList, "reason"),
		RequestID: requestID,
	})
	if err != nil && logger != nil {
		logger.ErrorContext(ctx, "failed to emit ledger event",
			"event", string(event),
			"error", err,
		)
	}
}

func extractSubject(attrList []any) string {
	for _, key := range []string{"insurance_key", "flight_key", "candidate", "airline", "subject_caller"} {
		if val := attrs.ExtractString(attrList, key); val != "" {
			return val
		}
	}
	return ""
}
