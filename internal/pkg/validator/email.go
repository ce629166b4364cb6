package validator

import (
	"errors"
	"strings"
)

// ValidateRecipient checks the minimal shape of an outbound email address.
// Deliverability is the transport's problem; this only rejects input that can
// never be a mailbox.
func ValidateRecipient(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("recipient required")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.New("invalid email format")
	}

	if !strings.Contains(parts[1], ".") {
		return errors.New("invalid email domain")
	}

	return nil
}
