package platformapi

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

// Client talks to the Volumetrica trading-platform API. The platform owns the
// real trading state; this service only proxies a few operations and records
// their results.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.PlatformConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Account is the platform's view of a trading account.
type Account struct {
	ID            string  `json:"id"`
	AccountNumber string  `json:"accountNumber"`
	Status        string  `json:"status"`
	Balance       float64 `json:"balance"`
	Equity        float64 `json:"equity"`
	Currency      string  `json:"currency"`
}

type CreateAccountRequest struct {
	UserEmail      string  `json:"userEmail"`
	Program        string  `json:"program"`
	InitialBalance float64 `json:"initialBalance"`
	Currency       string  `json:"currency"`
}

// APIError carries the upstream status and body text for diagnostics.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API returned HTTP %d: %s", e.Status, e.Body)
}

func (c *Client) GetAccount(ctx context.Context, platformAccountID string) (*Account, error) {
	account := &Account{}
	err := c.do(ctx, http.MethodGet, "/api/accounts/"+platformAccountID, nil, account)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (c *Client) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	account := &Account{}
	err := c.do(ctx, http.MethodPost, "/api/accounts", req, account)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (c *Client) DisableAccount(ctx context.Context, platformAccountID string) error {
	return c.do(ctx, http.MethodPost, "/api/accounts/"+platformAccountID+"/disable", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	if out != nil && len(raw) > 0 {
		return json.Unmarshal(raw, out)
	}
	return nil
}
