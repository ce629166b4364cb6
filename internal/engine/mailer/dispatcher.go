package mailer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"propdesk/internal/pkg/validator"
	"propdesk/internal/platform/models"
)

// DispatchResult is returned to the invoking application layer, which decides
// how to present failures.
type DispatchResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Dispatcher sends one transactional email per business event: look up the
// template, render it, hand it to the transport, and record the attempt in
// the outbox whatever the outcome. No retries; redelivery is the caller's
// decision.
type Dispatcher struct {
	templates *TemplateRepository
	outbox    *OutboxRepository
	transport Transport
}

func NewDispatcher(templates *TemplateRepository, outbox *OutboxRepository, transport Transport) *Dispatcher {
	return &Dispatcher{
		templates: templates,
		outbox:    outbox,
		transport: transport,
	}
}

// Dispatch renders and attempts delivery of the named template. Validation
// and lookup failures happen before any message is composed and leave no
// outbox entry; once rendering succeeds, every outcome is recorded.
func (d *Dispatcher) Dispatch(ctx context.Context, templateKey, toEmail string, vars map[string]interface{}) DispatchResult {
	if err := validator.ValidateRecipient(toEmail); err != nil {
		return DispatchResult{Error: err.Error()}
	}

	tpl, err := d.templates.GetActiveByKey(templateKey)
	if err != nil {
		log.Error().Err(err).Str("template_key", templateKey).Msg("template lookup failed")
		return DispatchResult{Error: "template lookup failed: " + err.Error()}
	}
	if tpl == nil {
		return DispatchResult{Error: "template not found or inactive: " + templateKey}
	}

	subject := Render(tpl.Subject, vars)
	body := Render(tpl.Body, vars)

	result := d.transport.Send(ctx, toEmail, subject, body)

	d.logAttempt(tpl, toEmail, subject, body, vars, result)

	if !result.OK {
		return DispatchResult{Error: result.Error}
	}
	return DispatchResult{OK: true}
}

// logAttempt appends the outbox entry for a composed message. A failed audit
// write is reported to the log but does not change the dispatch outcome.
func (d *Dispatcher) logAttempt(tpl *models.EmailTemplate, toEmail, subject, body string, vars map[string]interface{}, result SendResult) {
	now := time.Now().Unix()

	entry := &models.OutboxEntry{
		ID:         "out_" + uuid.New().String(),
		TemplateID: &tpl.ID,
		ToEmail:    toEmail,
		Subject:    subject,
		Body:       body,
		Status:     outboxStatus(result),
		Provider:   result.Provider,
		Error:      result.Error,
		CreatedAt:  now,
	}

	if vars != nil {
		if raw, err := json.Marshal(vars); err == nil {
			entry.Variables = raw
		}
	}

	// sent_at marks a genuine live hand-off, so the test provider never sets it.
	if result.OK && result.Provider != providerTest {
		entry.SentAt = &now
	}

	if err := d.outbox.Append(entry); err != nil {
		log.Error().
			Err(err).
			Str("to", toEmail).
			Str("template_id", tpl.ID).
			Str("status", entry.Status).
			Msg("outbox append failed, send attempt not audited")
	}
}

func outboxStatus(result SendResult) string {
	switch {
	case result.Provider == providerTest && result.OK:
		return models.OutboxStatusTest
	case result.OK:
		return models.OutboxStatusSent
	default:
		return models.OutboxStatusFailed
	}
}
