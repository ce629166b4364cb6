package models

import "encoding/json"

// EmailTemplate is a named message definition maintained through the admin
// console. Subject and body may contain {{variable}} placeholders.
type EmailTemplate struct {
	ID          string `json:"id"`
	TemplateKey string `json:"template_key"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Outbox entry statuses.
const (
	OutboxStatusQueued = "queued"
	OutboxStatusSent   = "sent"
	OutboxStatusFailed = "failed"
	OutboxStatusTest   = "test"
)

// OutboxEntry records one attempted send, success or not. Entries are
// append-only and capture the message exactly as rendered.
type OutboxEntry struct {
	ID         string          `json:"id"`
	TemplateID *string         `json:"template_id"`
	ToEmail    string          `json:"to_email"`
	Subject    string          `json:"subject"`
	Body       string          `json:"body"`
	Variables  json.RawMessage `json:"variables,omitempty"`
	Status     string          `json:"status"`
	Provider   string          `json:"provider"`
	Error      string          `json:"error,omitempty"`
	SentAt     *int64          `json:"sent_at,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}
