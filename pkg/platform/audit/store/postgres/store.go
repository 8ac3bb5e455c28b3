package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "flightsurety/pkg/platform/audit"
)

// Schema creates the ledger_events table. Event IDs are assigned by the
// publisher, so replays of the same event are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_events (
	seq          BIGSERIAL PRIMARY KEY,
	id           UUID NOT NULL UNIQUE,
	category     TEXT NOT NULL,
	timestamp    TIMESTAMPTZ NOT NULL,
	action       TEXT NOT NULL,
	subject      TEXT NOT NULL,
	actor_id     TEXT NOT NULL DEFAULT '',
	before_value TEXT NOT NULL DEFAULT '',
	after_value  TEXT NOT NULL DEFAULT '',
	decision     TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL DEFAULT '',
	request_id   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS ledger_events_subject_idx ON ledger_events (subject, seq);
CREATE INDEX IF NOT EXISTS ledger_events_action_idx ON ledger_events (action, seq);
`

const selectColumns = `
	SELECT id, category, timestamp, action, subject, actor_id,
		   before_value, after_value, decision, reason, request_id
	FROM ledger_events
`

// Store implements audit.Store on PostgreSQL. Rows are ordered by an insert
// sequence so listing preserves the order events were emitted in.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL event store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema applies Schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply ledger_events schema: %w", err)
	}
	return nil
}

// Append inserts an event. Duplicate IDs are ignored.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := event.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	query := `
		INSERT INTO ledger_events (
			id, category, timestamp, action, subject, actor_id,
			before_value, after_value, decision, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		eventID,
		string(category),
		event.Timestamp,
		event.Action,
		event.Subject,
		event.ActorID,
		event.Before,
		event.After,
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert ledger event: %w", err)
	}
	return nil
}

// ListBySubject returns a subject's events oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE subject = $1 ORDER BY seq ASC`, subject)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns up to limit of the latest events, oldest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, category, timestamp, action, subject, actor_id,
			   before_value, after_value, decision, reason, request_id
		FROM (SELECT * FROM ledger_events ORDER BY seq DESC LIMIT $1) recent
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListByActions returns up to limit of the latest events whose action is one
// of actions, oldest first.
func (s *Store) ListByActions(ctx context.Context, actions []audit.AuditEvent, limit int) ([]audit.Event, error) {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	query := selectColumns + ` WHERE action = ANY($1) ORDER BY seq DESC LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(names), limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger events by action: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			category string
		)
		err := rows.Scan(
			&event.ID,
			&category,
			&event.Timestamp,
			&event.Action,
			&event.Subject,
			&event.ActorID,
			&event.Before,
			&event.After,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return events, nil
}
