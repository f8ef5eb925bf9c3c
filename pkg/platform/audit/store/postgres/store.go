package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "dladmin/pkg/domain"
	audit "dladmin/pkg/platform/audit"
)

// pgUniqueViolation is the SQLSTATE for duplicate keys.
const pgUniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          UUID PRIMARY KEY,
	category    TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	officer_id  UUID,
	subject     TEXT NOT NULL,
	action      TEXT NOT NULL,
	decision    TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_subject_idx ON audit_events (subject, occurred_at);
`

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the audit table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Append inserts event. Re-appending an event id is a no-op.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID, err := uuid.Parse(event.ID)
	if err != nil {
		eventID = uuid.New()
	}
	var officer any
	if !event.OfficerID.IsNil() {
		officer = event.OfficerID.String()
	}
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	query := `
		INSERT INTO audit_events (id, category, occurred_at, officer_id, subject, action, decision, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		eventID, string(category), event.Timestamp, officer,
		event.Subject, event.Action, event.Decision, event.Reason, event.RequestID,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, category, occurred_at, officer_id, subject, action, decision, reason, request_id FROM audit_events`

func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE subject = $1 ORDER BY occurred_at ASC`, subject)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return scanEvents(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY occurred_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	defer rows.Close()
	out := []audit.Event{}
	for rows.Next() {
		var (
			e        audit.Event
			eventID  uuid.UUID
			category string
			officer  uuid.NullUUID
		)
		if err := rows.Scan(&eventID, &category, &e.Timestamp, &officer, &e.Subject, &e.Action, &e.Decision, &e.Reason, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ID = eventID.String()
		e.Category = audit.EventCategory(category)
		if officer.Valid {
			e.OfficerID = id.OfficerID(officer.UUID)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
