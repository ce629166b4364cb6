package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"propdesk/internal/platform/config"
)

// SendResult is the outcome of one delivery attempt.
type SendResult struct {
	OK       bool
	Provider string
	ID       string
	Error    string
}

// Transport hands a composed message to a delivery provider. Implementations
// are selected once at construction time; the dispatcher never branches on
// environment itself.
type Transport interface {
	Send(ctx context.Context, to, subject, html string) SendResult
}

const (
	providerTest   = "test"
	providerResend = "resend"
)

// TestTransport reports success without attempting delivery. Every
// non-production environment uses it, so those environments never need
// credentials and never send real mail.
type TestTransport struct{}

func (TestTransport) Send(ctx context.Context, to, subject, html string) SendResult {
	return SendResult{OK: true, Provider: providerTest}
}

// HTTPTransport delivers through a Resend-style HTTP API.
type HTTPTransport struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

func NewHTTPTransport(cfg config.EmailConfig) *HTTPTransport {
	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}
	return &HTTPTransport{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *HTTPTransport) Send(ctx context.Context, to, subject, html string) SendResult {
	payload, err := json.Marshal(map[string]interface{}{
		"from":    t.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return SendResult{Provider: providerResend, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(payload))
	if err != nil {
		return SendResult{Provider: providerResend, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return SendResult{Provider: providerResend, Error: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SendResult{
			Provider: providerResend,
			Error:    fmt.Sprintf("provider returned HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var parsed struct {
		ID string `json:"id"`
	}
	json.Unmarshal(body, &parsed)

	return SendResult{OK: true, Provider: providerResend, ID: parsed.ID}
}

// disabledTransport fails every send without network I/O. It is what a
// production process gets when email credentials are absent: delivery must
// never silently downgrade to test mode in production.
type disabledTransport struct {
	reason string
}

func (t disabledTransport) Send(ctx context.Context, to, subject, html string) SendResult {
	return SendResult{Provider: providerResend, Error: t.reason}
}

// NewTransport selects the transport strategy for this process. Production
// with credentials gets the live HTTP transport; production without
// credentials gets a fail-closed transport; everything else gets the no-op
// test transport.
func NewTransport(cfg *config.Config) Transport {
	if !cfg.IsProduction() {
		return TestTransport{}
	}
	if cfg.Email.APIKey == "" || cfg.Email.FromAddress == "" {
		return disabledTransport{reason: "missing email credentials: api_key and from_address are required in production"}
	}
	return NewHTTPTransport(cfg.Email)
}
