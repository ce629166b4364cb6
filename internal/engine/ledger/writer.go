package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"propdesk/internal/platform/models"
)

// RecordResult classifies a single ledger append. A replayed event is a
// success path: the sender must receive the same "OK, already handled"
// semantics it got the first time.
type RecordResult struct {
	Inserted  bool   `json:"inserted"`
	Duplicate bool   `json:"duplicate"`
	Error     string `json:"error,omitempty"`
}

// Writer appends externally-sourced events into the ledger exactly once per
// EventID. It is stateless; concurrent redeliveries racing on the same
// EventID are resolved by the store's unique constraint.
type Writer struct {
	repo *Repository
}

func NewWriter(repo *Repository) *Writer {
	return &Writer{repo: repo}
}

func (w *Writer) Record(event *models.WebhookEvent) RecordResult {
	if event.EventID == "" {
		return RecordResult{Error: "event_id required"}
	}

	if event.ID == "" {
		event.ID = "evt_" + uuid.New().String()
	}
	if event.AuthMode == "" {
		event.AuthMode = models.AuthModeNone
	}
	if event.ReceivedAt == 0 {
		event.ReceivedAt = time.Now().Unix()
	}

	outcome, err := w.repo.Insert(event)
	switch outcome {
	case OutcomeInserted:
		log.Info().
			Str("event_id", event.EventID).
			Str("event_type", event.EventType).
			Str("auth_mode", string(event.AuthMode)).
			Msg("webhook event recorded")
		return RecordResult{Inserted: true}
	case OutcomeDuplicate:
		log.Debug().
			Str("event_id", event.EventID).
			Msg("webhook event already recorded, redelivery ignored")
		return RecordResult{Duplicate: true}
	default:
		log.Error().
			Err(err).
			Str("event_id", event.EventID).
			Msg("webhook event insert failed")
		return RecordResult{Error: err.Error()}
	}
}
