package handlers

import (
	"encoding/json"
	"net/http"

	"propdesk/internal/engine/mailer"
	"propdesk/internal/pkg/errors"
	"propdesk/internal/platform/models"
)

type OutboxHandler struct {
	repo       *mailer.OutboxRepository
	dispatcher *mailer.Dispatcher
}

func NewOutboxHandler(repo *mailer.OutboxRepository, dispatcher *mailer.Dispatcher) *OutboxHandler {
	return &OutboxHandler{repo: repo, dispatcher: dispatcher}
}

func (h *OutboxHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 50)
	offset := parsePositiveInt(r.URL.Query().Get("offset"), 0)

	entries, err := h.repo.List(limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch outbox", nil)
		return
	}
	if entries == nil {
		entries = []*models.OutboxEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"entries": entries})
}

type sendRequest struct {
	TemplateKey string                 `json:"template_key"`
	ToEmail     string                 `json:"to_email"`
	Variables   map[string]interface{} `json:"variables"`
}

// Send lets operations staff dispatch a template manually, for support cases
// and for verifying template changes.
func (h *OutboxHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	result := h.dispatcher.Dispatch(r.Context(), req.TemplateKey, req.ToEmail, req.Variables)
	if !result.OK {
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeUpstream, result.Error, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
