package mailer

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"propdesk/internal/platform/config"
	"propdesk/internal/platform/models"
)

func setupMailerDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}

	query := `
	CREATE TABLE email_templates (
		id TEXT PRIMARY KEY,
		template_key TEXT UNIQUE NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE email_outbox (
		id TEXT PRIMARY KEY,
		template_id TEXT,
		to_email TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL,
		variables TEXT,
		status TEXT NOT NULL,
		provider TEXT NOT NULL,
		error TEXT,
		sent_at INTEGER,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

func seedTemplate(t *testing.T, db *sql.DB, key string, active bool) {
	now := time.Now().Unix()
	tpl := &models.EmailTemplate{
		ID:          "tpl_" + key,
		TemplateKey: key,
		Subject:     "Welcome {{name}}",
		Body:        "<p>Hello {{name}}, your account {{account}} is ready.</p>",
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := NewTemplateRepository(db).Create(tpl); err != nil {
		t.Fatalf("Failed to seed template: %v", err)
	}
}

type fakeTransport struct {
	result SendResult
	calls  int
}

func (f *fakeTransport) Send(ctx context.Context, to, subject, html string) SendResult {
	f.calls++
	return f.result
}

func outboxRows(t *testing.T, db *sql.DB) []*models.OutboxEntry {
	entries, err := NewOutboxRepository(db).List(100, 0)
	if err != nil {
		t.Fatalf("Failed to list outbox: %v", err)
	}
	return entries
}

func TestDispatch_RecipientRequired(t *testing.T) {
	db := setupMailerDB(t)
	defer db.Close()
	seedTemplate(t, db, "welcome", true)

	transport := &fakeTransport{result: SendResult{OK: true, Provider: "test"}}
	d := NewDispatcher(NewTemplateRepository(db), NewOutboxRepository(db), transport)

	result := d.Dispatch(context.Background(), "welcome", "", nil)
	if result.OK {
		t.Fatal("Expected failure for empty recipient")
	}
	if !strings.Contains(result.Error, "recipient required") {
		t.Errorf("Expected recipient required error, got %q", result.Error)
	}
	if transport.calls != 0 {
		t.Error("Transport must not be invoked for invalid recipient")
	}
	if rows := outboxRows(t, db); len(rows) != 0 {
		t.Errorf("Expected zero outbox rows, got %d", len(rows))
	}
}

func TestDispatch_InactiveTemplateNotLogged(t *testing.T) {
	db := setupMailerDB(t)
	defer db.Close()
	seedTemplate(t, db, "welcome", false)

	transport := &fakeTransport{result: SendResult{OK: true, Provider: "test"}}
	d := NewDispatcher(NewTemplateRepository(db), NewOutboxRepository(db), transport)

	result := d.Dispatch(context.Background(), "welcome", "trader@example.com", nil)
	if result.OK {
		t.Fatal("Expected failure for inactive template")
	}
	if !strings.Contains(result.Error, "not found or inactive") {
		t.Errorf("Unexpected error: %q", result.Error)
	}
	if transport.calls != 0 {
		t.Error("Transport must not be invoked when template is unusable")
	}
	if rows := outboxRows(t, db); len(rows) != 0 {
		t.Errorf("Expected zero outbox rows, got %d", len(rows))
	}
}

func TestDispatch_SuccessLogsSentEntry(t *testing.T) {
	db := setupMailerDB(t)
	defer db.Close()
	seedTemplate(t, db, "welcome", true)

	transport := &fakeTransport{result: SendResult{OK: true, Provider: "resend", ID: "msg_1"}}
	d := NewDispatcher(NewTemplateRepository(db), NewOutboxRepository(db), transport)

	vars := map[string]interface{}{"name": "Ann", "account": "PA-1042"}
	result := d.Dispatch(context.Background(), "welcome", "ann@example.com", vars)
	if !result.OK {
		t.Fatalf("Expected success, got %q", result.Error)
	}

	rows := outboxRows(t, db)
	if len(rows) != 1 {
		t.Fatalf("Expected exactly one outbox row, got %d", len(rows))
	}
	entry := rows[0]
	if entry.Status != models.OutboxStatusSent {
		t.Errorf("Expected status sent, got %s", entry.Status)
	}
	if entry.Subject != "Welcome Ann" {
		t.Errorf("Outbox must capture the rendered subject, got %q", entry.Subject)
	}
	if !strings.Contains(entry.Body, "account PA-1042 is ready") {
		t.Errorf("Outbox must capture the rendered body, got %q", entry.Body)
	}
	if entry.SentAt == nil {
		t.Error("Expected sent_at on live success")
	}
	if !strings.Contains(string(entry.Variables), `"name":"Ann"`) {
		t.Errorf("Expected supplied variables recorded, got %s", entry.Variables)
	}
}

func TestDispatch_TestTransportLogsTestEntry(t *testing.T) {
	db := setupMailerDB(t)
	defer db.Close()
	seedTemplate(t, db, "welcome", true)

	d := NewDispatcher(NewTemplateRepository(db), NewOutboxRepository(db), TestTransport{})

	result := d.Dispatch(context.Background(), "welcome", "ann@example.com", nil)
	if !result.OK {
		t.Fatalf("Expected success, got %q", result.Error)
	}

	rows := outboxRows(t, db)
	if len(rows) != 1 {
		t.Fatalf("Expected exactly one outbox row, got %d", len(rows))
	}
	if rows[0].Status != models.OutboxStatusTest {
		t.Errorf("Expected status test, got %s", rows[0].Status)
	}
	if rows[0].SentAt != nil {
		t.Error("sent_at must not be set for the test provider")
	}
}

func TestDispatch_TransportFailureLogsFailedEntry(t *testing.T) {
	db := setupMailerDB(t)
	defer db.Close()
	seedTemplate(t, db, "welcome", true)

	transport := &fakeTransport{result: SendResult{Provider: "resend", Error: "provider returned HTTP 500: upstream down"}}
	d := NewDispatcher(NewTemplateRepository(db), NewOutboxRepository(db), transport)

	result := d.Dispatch(context.Background(), "welcome", "ann@example.com", nil)
	if result.OK {
		t.Fatal("Expected failure to propagate to caller")
	}
	if result.Error == "" {
		t.Fatal("Expected non-empty error")
	}

	rows := outboxRows(t, db)
	if len(rows) != 1 {
		t.Fatalf("Expected exactly one outbox row, got %d", len(rows))
	}
	if rows[0].Status != models.OutboxStatusFailed {
		t.Errorf("Expected status failed, got %s", rows[0].Status)
	}
	if !strings.Contains(rows[0].Error, "HTTP 500") {
		t.Errorf("Expected transport diagnostics in outbox, got %q", rows[0].Error)
	}
	if rows[0].SentAt != nil {
		t.Error("sent_at must not be set on failure")
	}
}

func TestDispatch_ProductionWithoutCredentials(t *testing.T) {
	db := setupMailerDB(t)
	defer db.Close()
	seedTemplate(t, db, "welcome", true)

	cfg := &config.Config{Environment: "production"}
	d := NewDispatcher(NewTemplateRepository(db), NewOutboxRepository(db), NewTransport(cfg))

	result := d.Dispatch(context.Background(), "welcome", "ann@example.com", nil)
	if result.OK {
		t.Fatal("Expected fail-closed dispatch in production without credentials")
	}

	rows := outboxRows(t, db)
	if len(rows) != 1 {
		t.Fatalf("Expected exactly one outbox row, got %d", len(rows))
	}
	if rows[0].Status != models.OutboxStatusFailed {
		t.Errorf("Expected status failed, got %s", rows[0].Status)
	}
	if !strings.Contains(rows[0].Error, "missing email credentials") {
		t.Errorf("Expected credentials diagnostic, got %q", rows[0].Error)
	}
}

func TestDispatch_OutboxWriteFailureDoesNotChangeResult(t *testing.T) {
	db := setupMailerDB(t)
	defer db.Close()
	seedTemplate(t, db, "welcome", true)

	// Dropping the outbox table makes the audit write fail while the send
	// itself still succeeds.
	if _, err := db.Exec(`DROP TABLE email_outbox`); err != nil {
		t.Fatalf("Failed to drop outbox table: %v", err)
	}

	d := NewDispatcher(NewTemplateRepository(db), NewOutboxRepository(db), TestTransport{})

	result := d.Dispatch(context.Background(), "welcome", "ann@example.com", nil)
	if !result.OK {
		t.Errorf("Audit failure must not gate dispatch success, got %q", result.Error)
	}
}
