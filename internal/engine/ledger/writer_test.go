package ledger

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"propdesk/internal/platform/models"
)

func setupTestDB(t *testing.T, extraConstraint string) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}

	correlationCol := "correlation_id TEXT"
	if extraConstraint == "unique_correlation" {
		correlationCol = "correlation_id TEXT UNIQUE"
	}

	query := `
	CREATE TABLE webhook_events (
		id TEXT PRIMARY KEY,
		event_id TEXT UNIQUE NOT NULL,
		auth_mode TEXT NOT NULL,
		signature_valid INTEGER NOT NULL DEFAULT 0,
		category TEXT,
		event_type TEXT,
		account_id TEXT,
		user_id TEXT,
		payload TEXT,
		headers TEXT,
		` + correlationCol + `,
		source_ip TEXT,
		received_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return db
}

func testEvent(eventID string) *models.WebhookEvent {
	return &models.WebhookEvent{
		EventID:        eventID,
		AuthMode:       models.AuthModeSignature,
		SignatureValid: true,
		Category:       "account",
		EventType:      "account.updated",
		AccountID:      "acct_1",
		Payload:        []byte(`{"balance":50000}`),
	}
}

func TestWriter_RecordOncePerEventID(t *testing.T) {
	db := setupTestDB(t, "")
	defer db.Close()

	repo := NewRepository(db)
	writer := NewWriter(repo)

	first := writer.Record(testEvent("vol_evt_001"))
	if !first.Inserted || first.Duplicate || first.Error != "" {
		t.Errorf("Expected first record to insert, got %+v", first)
	}

	second := writer.Record(testEvent("vol_evt_001"))
	if second.Inserted || !second.Duplicate || second.Error != "" {
		t.Errorf("Expected second record to classify as duplicate, got %+v", second)
	}

	count, err := repo.CountByEventID("vol_evt_001")
	if err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly one row, got %d", count)
	}
}

func TestWriter_DistinctEventsDoNotCollide(t *testing.T) {
	db := setupTestDB(t, "")
	defer db.Close()

	writer := NewWriter(NewRepository(db))

	a := writer.Record(testEvent("vol_evt_a"))
	b := writer.Record(testEvent("vol_evt_b"))

	if !a.Inserted || !b.Inserted {
		t.Errorf("Expected both events to insert, got %+v and %+v", a, b)
	}

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM webhook_events`).Scan(&total); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected two rows, got %d", total)
	}
}

func TestWriter_EmptyEventIDRejected(t *testing.T) {
	db := setupTestDB(t, "")
	defer db.Close()

	writer := NewWriter(NewRepository(db))

	result := writer.Record(testEvent(""))
	if result.Inserted || result.Duplicate {
		t.Errorf("Expected rejection, got %+v", result)
	}
	if result.Error == "" {
		t.Error("Expected validation error for empty event_id")
	}
}

// A uniqueness violation on a column other than event_id must surface as a
// failure, not as a duplicate.
func TestWriter_OtherUniqueViolationIsFailure(t *testing.T) {
	db := setupTestDB(t, "unique_correlation")
	defer db.Close()

	writer := NewWriter(NewRepository(db))

	first := testEvent("vol_evt_1")
	first.CorrelationID = "corr_shared"
	if result := writer.Record(first); !result.Inserted {
		t.Fatalf("Expected first insert to succeed, got %+v", result)
	}

	second := testEvent("vol_evt_2")
	second.CorrelationID = "corr_shared"
	result := writer.Record(second)
	if result.Duplicate {
		t.Error("Correlation collision must not be classified as a replayed event")
	}
	if result.Inserted || result.Error == "" {
		t.Errorf("Expected a genuine failure, got %+v", result)
	}
}

func TestRepository_GetByEventID(t *testing.T) {
	db := setupTestDB(t, "")
	defer db.Close()

	repo := NewRepository(db)
	writer := NewWriter(repo)

	event := testEvent("vol_evt_fetch")
	event.Headers = []byte(`{"X-Volumetrica-Signature":"abc"}`)
	if result := writer.Record(event); !result.Inserted {
		t.Fatalf("Failed to record event: %+v", result)
	}

	fetched, err := repo.GetByEventID("vol_evt_fetch")
	if err != nil {
		t.Fatalf("Failed to fetch event: %v", err)
	}
	if fetched == nil {
		t.Fatal("Expected event, got nil")
	}
	if fetched.EventType != "account.updated" {
		t.Errorf("Expected event type account.updated, got %s", fetched.EventType)
	}
	if string(fetched.Payload) != `{"balance":50000}` {
		t.Errorf("Payload not stored verbatim: %s", fetched.Payload)
	}

	missing, err := repo.GetByEventID("vol_evt_missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown event_id")
	}
}
