package httptransport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "flightsurety/pkg/domain-errors"
	audit "flightsurety/pkg/platform/audit"
	"flightsurety/pkg/platform/httputil"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// EventReader queries the ledger event stream.
type EventReader interface {
	List(ctx context.Context, subject string) ([]audit.Event, error)
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

type EventResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	Actor     string    `json:"actor,omitempty"`
	Before    string    `json:"before,omitempty"`
	After     string    `json:"after,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// EventsHandler serves GET /v1/events?subject=&limit=.
type EventsHandler struct {
	events EventReader
}

func (h EventsHandler) Register(r chi.Router) {
	r.Get("/events", h.handleList)
}

func (h EventsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxEventLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 1000"))
			return
		}
		limit = n
	}

	var (
		events []audit.Event
		err    error
	)
	if subject := r.URL.Query().Get("subject"); subject != "" {
		events, err = h.events.List(ctx, subject)
		if len(events) > limit {
			events = events[len(events)-limit:]
		}
	} else {
		events, err = h.events.Recent(ctx, limit)
	}
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read events"))
		return
	}

	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			ID:        e.ID,
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
			Action:    e.Action,
			Subject:   e.Subject,
			Actor:     e.ActorID,
			Before:    e.Before,
			After:     e.After,
			Decision:  e.Decision,
			Reason:    e.Reason,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]EventResponse{"events": out})
}
