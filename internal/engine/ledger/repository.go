package ledger

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
	"propdesk/internal/platform/models"
)

// Outcome is the classified result of a ledger insert. The store's
// unique-constraint enforcement is the only dedup mechanism, so the
// store-specific error encoding is translated here and nowhere else.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeDuplicate
	OutcomeFailed
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert attempts a single append of the event row. A uniqueness violation on
// the event_id column maps to OutcomeDuplicate; a violation of any other
// constraint is a genuine failure, since conflating it with a replay would
// silently drop a distinct event.
func (r *Repository) Insert(event *models.WebhookEvent) (Outcome, error) {
	_, err := r.db.Exec(`
		INSERT INTO webhook_events (
			id, event_id, auth_mode, signature_valid, category, event_type,
			account_id, user_id, payload, headers, correlation_id, source_ip, received_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.EventID, string(event.AuthMode), event.SignatureValid,
		event.Category, event.EventType, event.AccountID, event.UserID,
		string(event.Payload), nullableJSON(event.Headers), event.CorrelationID,
		event.SourceIP, event.ReceivedAt)

	if err != nil {
		if isDedupKeyViolation(err) {
			return OutcomeDuplicate, nil
		}
		return OutcomeFailed, err
	}

	return OutcomeInserted, nil
}

func (r *Repository) GetByEventID(eventID string) (*models.WebhookEvent, error) {
	event := &models.WebhookEvent{}
	var payload, headers sql.NullString
	err := r.db.QueryRow(`
		SELECT id, event_id, auth_mode, signature_valid, category, event_type,
		       account_id, user_id, payload, headers, correlation_id, source_ip, received_at
		FROM webhook_events WHERE event_id = ?
	`, eventID).Scan(&event.ID, &event.EventID, &event.AuthMode, &event.SignatureValid,
		&event.Category, &event.EventType, &event.AccountID, &event.UserID,
		&payload, &headers, &event.CorrelationID, &event.SourceIP, &event.ReceivedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if payload.Valid {
		event.Payload = []byte(payload.String)
	}
	if headers.Valid {
		event.Headers = []byte(headers.String)
	}
	return event, nil
}

func (r *Repository) List(limit, offset int) ([]*models.WebhookEvent, error) {
	rows, err := r.db.Query(`
		SELECT id, event_id, auth_mode, signature_valid, category, event_type,
		       account_id, user_id, payload, headers, correlation_id, source_ip, received_at
		FROM webhook_events ORDER BY received_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.WebhookEvent
	for rows.Next() {
		event := &models.WebhookEvent{}
		var payload, headers sql.NullString
		if err := rows.Scan(&event.ID, &event.EventID, &event.AuthMode, &event.SignatureValid,
			&event.Category, &event.EventType, &event.AccountID, &event.UserID,
			&payload, &headers, &event.CorrelationID, &event.SourceIP, &event.ReceivedAt); err != nil {
			return nil, err
		}
		if payload.Valid {
			event.Payload = []byte(payload.String)
		}
		if headers.Valid {
			event.Headers = []byte(headers.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *Repository) CountByEventID(eventID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM webhook_events WHERE event_id = ?`, eventID).Scan(&count)
	return count, err
}

// isDedupKeyViolation reports whether err is a uniqueness violation scoped to
// the event_id column specifically. SQLite names the violated column in the
// error text ("UNIQUE constraint failed: webhook_events.event_id"), which is
// checked in addition to the extended code so that a collision on some other
// unique column is not misread as a replayed event.
func isDedupKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.Code != sqlite3.ErrConstraint || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return false
	}
	return strings.Contains(sqliteErr.Error(), "webhook_events.event_id")
}

func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
