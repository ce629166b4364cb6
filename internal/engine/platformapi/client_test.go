package platformapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"propdesk/internal/platform/config"
)

func TestClient_GetAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/accounts/va_100" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "vk_test" {
			t.Errorf("Missing api key header")
		}
		w.Write([]byte(`{"id":"va_100","accountNumber":"PA-1042","status":"Active","balance":50000,"currency":"USD"}`))
	}))
	defer server.Close()

	client := NewClient(config.PlatformConfig{BaseURL: server.URL, APIKey: "vk_test"})

	account, err := client.GetAccount(context.Background(), "va_100")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if account.AccountNumber != "PA-1042" || account.Balance != 50000 {
		t.Errorf("Unexpected account: %+v", account)
	}
}

func TestClient_CreateAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/accounts" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"va_101","accountNumber":"PA-1043","status":"Active","balance":100000,"currency":"USD"}`))
	}))
	defer server.Close()

	client := NewClient(config.PlatformConfig{BaseURL: server.URL, APIKey: "vk_test"})

	account, err := client.CreateAccount(context.Background(), CreateAccountRequest{
		UserEmail:      "trader@example.com",
		Program:        "eval-100k",
		InitialBalance: 100000,
		Currency:       "USD",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if account.ID != "va_101" {
		t.Errorf("Unexpected account id %s", account.ID)
	}
}

func TestClient_UpstreamErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"platform maintenance"}`))
	}))
	defer server.Close()

	client := NewClient(config.PlatformConfig{BaseURL: server.URL, APIKey: "vk_test"})

	_, err := client.GetAccount(context.Background(), "va_100")
	if err == nil {
		t.Fatal("Expected error for non-2xx response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", apiErr.Status)
	}
	if !strings.Contains(apiErr.Body, "maintenance") {
		t.Errorf("Expected upstream body preserved, got %q", apiErr.Body)
	}
}

func TestClient_DisableAccount(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.URL.Path != "/api/accounts/va_100/disable" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(config.PlatformConfig{BaseURL: server.URL, APIKey: "vk_test"})

	if err := client.DisableAccount(context.Background(), "va_100"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !called {
		t.Error("Expected request to be made")
	}
}
