package models

import "encoding/json"

// AuthMode records how an inbound event's authenticity was established.
type AuthMode string

const (
	AuthModeSignature    AuthMode = "signature"
	AuthModeSharedSecret AuthMode = "shared-secret"
	AuthModeNone         AuthMode = "none"
)

// WebhookEvent is one externally-sourced notification as it lands in the
// ledger. Rows are append-only: created once per distinct EventID, never
// mutated, never deleted.
type WebhookEvent struct {
	ID             string          `json:"id"`
	EventID        string          `json:"event_id"`
	AuthMode       AuthMode        `json:"auth_mode"`
	SignatureValid bool            `json:"signature_valid"`
	Category       string          `json:"category,omitempty"`
	EventType      string          `json:"event_type,omitempty"`
	AccountID      string          `json:"account_id,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	Headers        json.RawMessage `json:"headers,omitempty"`
	CorrelationID  string          `json:"correlation_id,omitempty"`
	SourceIP       string          `json:"source_ip,omitempty"`
	ReceivedAt     int64           `json:"received_at"`
}
