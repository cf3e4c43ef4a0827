package checkout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/uchase/storefront-payments/internal/normalize"
)

func TestCreatePaymentSessionSuccess(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"ps_1","payment_session_token":"tok_1","payment_session_secret":"pss_1"}`))
	}))
	defer server.Close()

	c := New(server.URL, "sk_test_key")
	resp, err := c.CreatePaymentSession(context.Background(), map[string]any{"amount": 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp["id"] != "ps_1" || resp["payment_session_token"] != "tok_1" {
		t.Errorf("response = %v", resp)
	}
	if gotAuth != "Bearer sk_test_key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/payment-sessions" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestRequestPaymentUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"request_id":"req_1","error_type":"request_invalid","error_codes":["amount_invalid"]}`))
	}))
	defer server.Close()

	c := New(server.URL, "sk")
	_, err := c.RequestPayment(context.Background(), map[string]any{})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d", upstream.StatusCode)
	}
	if upstream.ErrorType != "request_invalid" {
		t.Errorf("ErrorType = %q", upstream.ErrorType)
	}
	if len(upstream.ErrorCodes) != 1 || upstream.ErrorCodes[0] != "amount_invalid" {
		t.Errorf("ErrorCodes = %v", upstream.ErrorCodes)
	}
	if upstream.RequestID != "req_1" {
		t.Errorf("RequestID = %q", upstream.RequestID)
	}
}

func TestConnectionFailureIsServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	c := New(server.URL, "sk")
	_, err := c.RequestPayment(context.Background(), map[string]any{})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestTimeoutIsGatewayTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := New(server.URL, "sk")
	c.client.Timeout = 20 * time.Millisecond
	_, err := c.RequestPayment(context.Background(), map[string]any{})
	if !errors.Is(err, ErrGatewayTimeout) {
		t.Errorf("expected ErrGatewayTimeout, got %v", err)
	}
}

func TestSubmitPaymentSessionForwardsVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment-sessions/ps_9/submits" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"id":"pay_9","status":"Pending"}`))
	}))
	defer server.Close()

	c := New(server.URL, "sk")
	status, body, err := c.SubmitPaymentSession(context.Background(), "ps_9", map[string]any{"session_data": "sd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusAccepted {
		t.Errorf("status = %d, want the provider's original code", status)
	}
	if body["status"] != "Pending" {
		t.Errorf("body = %v", body)
	}
}

func TestRequestWalletToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokens" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"applepay","token":"tok_wallet_1","expires_on":"2025-01-01T00:00:00Z","scheme":"Visa","last4":"4242"}`))
	}))
	defer server.Close()

	c := New(server.URL, "sk")
	token, err := c.RequestWalletToken(context.Background(), "applepay", map[string]any{"version": "EC_v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.Token != "tok_wallet_1" || token.Scheme != "Visa" {
		t.Errorf("token = %+v", token)
	}
}

func TestGetPaymentDetailsLinksNormalizeToStrings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/pay_1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "pay_1",
			"amount": 1000,
			"currency": "EUR",
			"status": "Captured",
			"approved": true,
			"source": {"type": "card", "last4": "4242"},
			"_links": {
				"self": {"href": "https://api.example.com/payments/pay_1"},
				"actions": {"href": "https://api.example.com/payments/pay_1/actions"}
			}
		}`))
	}))
	defer server.Close()

	c := New(server.URL, "sk")
	details, err := c.GetPaymentDetails(context.Background(), "pay_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	flat, ok := normalize.Value(details).(map[string]any)
	if !ok {
		t.Fatalf("normalized details should be a mapping, got %T", normalize.Value(details))
	}
	links, ok := flat["_links"].(map[string]any)
	if !ok {
		t.Fatalf("_links = %v", flat["_links"])
	}
	if links["self"] != "https://api.example.com/payments/pay_1" {
		t.Errorf("self link = %v, want the bare href string", links["self"])
	}
	source, ok := flat["source"].(map[string]any)
	if !ok || source["last4"] != "4242" {
		t.Errorf("source = %v", flat["source"])
	}
}
