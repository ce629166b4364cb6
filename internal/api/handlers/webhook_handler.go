package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"propdesk/internal/engine/ledger"
	"propdesk/internal/pkg/errors"
	"propdesk/internal/platform/models"
)

const maxWebhookBody = 1 << 20

// WebhookHandler is the boundary for inbound trading-platform notifications.
// It establishes transport-level authenticity, then hands the event to the
// ledger writer; replayed deliveries look like success to the sender.
type WebhookHandler struct {
	writer        *ledger.Writer
	repo          *ledger.Repository
	signingSecret string
}

func NewWebhookHandler(writer *ledger.Writer, repo *ledger.Repository, signingSecret string) *WebhookHandler {
	return &WebhookHandler{
		writer:        writer,
		repo:          repo,
		signingSecret: signingSecret,
	}
}

// webhookPayload is the envelope the platform posts. Unknown fields ride
// along in the verbatim payload.
type webhookPayload struct {
	EventID   string `json:"eventId"`
	Category  string `json:"category"`
	EventType string `json:"eventType"`
	AccountID string `json:"accountId"`
	UserID    string `json:"userId"`
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Failed to read request body", nil)
		return
	}

	signature := r.Header.Get("X-Volumetrica-Signature")
	authMode := models.AuthModeNone
	signatureValid := false

	if h.signingSecret != "" {
		authMode = models.AuthModeSignature
		signatureValid = ledger.VerifySignature(h.signingSecret, body, signature)
		if !signatureValid {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid webhook signature", nil)
			return
		}
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid JSON payload", nil)
		return
	}
	if payload.EventID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "eventId is required", nil)
		return
	}

	headers, _ := json.Marshal(map[string]string{
		"Content-Type":            r.Header.Get("Content-Type"),
		"User-Agent":              r.Header.Get("User-Agent"),
		"X-Volumetrica-Signature": signature,
	})

	event := &models.WebhookEvent{
		EventID:        payload.EventID,
		AuthMode:       authMode,
		SignatureValid: signatureValid,
		Category:       payload.Category,
		EventType:      payload.EventType,
		AccountID:      payload.AccountID,
		UserID:         payload.UserID,
		Payload:        body,
		Headers:        headers,
		CorrelationID:  r.Header.Get("X-Correlation-Id"),
		SourceIP:       r.RemoteAddr,
	}

	result := h.writer.Record(event)
	if result.Error != "" {
		if !result.Inserted && !result.Duplicate && result.Error == "event_id required" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, result.Error, nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to record event", nil)
		return
	}

	status := "recorded"
	if result.Duplicate {
		status = "already_recorded"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// ListEvents serves the admin console's ledger view.
func (h *WebhookHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 50)
	offset := parsePositiveInt(r.URL.Query().Get("offset"), 0)

	events, err := h.repo.List(limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch events", nil)
		return
	}
	if events == nil {
		events = []*models.WebhookEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"events": events})
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
