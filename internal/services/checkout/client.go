// Package checkout is the REST client for the Checkout.com gateway API.
// Every operation is one synchronous call: marshal the prepared body,
// POST/GET it, and map the answer into either a decoded JSON tree or one of
// the package's errors.
package checkout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func New(baseURL, secretKey string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

// CreatePaymentSession starts a flow checkout session.
func (c *Client) CreatePaymentSession(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.postJSON(ctx, "/payment-sessions", body)
}

// CreatePaymentContext starts a wallet-style approval flow (e.g. PayPal).
func (c *Client) CreatePaymentContext(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.postJSON(ctx, "/payment-contexts", body)
}

// RequestPayment requests a card, token or context payment.
func (c *Client) RequestPayment(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.postJSON(ctx, "/payments", body)
}

// CreatePaymentLink creates a provider-hosted payment link.
func (c *Client) CreatePaymentLink(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.postJSON(ctx, "/payments/links", body)
}

// CreateHostedPaymentsSession creates a hosted payment page session.
func (c *Client) CreateHostedPaymentsSession(ctx context.Context, body map[string]any) (map[string]any, error) {
	return c.postJSON(ctx, "/hosted-payments", body)
}

// RequestWalletToken exchanges raw wallet token data (Apple Pay, Google
// Pay) for a provider card token.
func (c *Client) RequestWalletToken(ctx context.Context, walletType string, tokenData map[string]any) (*WalletToken, error) {
	body := map[string]any{
		"type":       walletType,
		"token_data": tokenData,
	}
	raw, err := c.do(ctx, http.MethodPost, "/tokens", body)
	if err != nil {
		return nil, err
	}
	var token WalletToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("failed to decode wallet token response: %w", err)
	}
	return &token, nil
}

// GetPaymentDetails fetches the full payment object graph.
func (c *Client) GetPaymentDetails(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	raw, err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	var details PaymentDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, fmt.Errorf("failed to decode payment details: %w", err)
	}
	return &details, nil
}

// SubmitPaymentSession submits collected flow session data. Unlike the
// other operations the provider's answer is forwarded verbatim with its
// original status code, so both are returned even on non-2xx.
func (c *Client) SubmitPaymentSession(ctx context.Context, sessionID string, body map[string]any) (int, map[string]any, error) {
	path := fmt.Sprintf("/payment-sessions/%s/submits", sessionID)
	jsonData, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal submit request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create submit request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	decoded, err := decodeBody(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, decoded, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return decoded, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	upstream := upstreamErrorFrom(resp.StatusCode, raw)
	log.Warn().
		Int("status", upstream.StatusCode).
		Str("path", path).
		Str("errorType", upstream.ErrorType).
		Strs("errorCodes", upstream.ErrorCodes).
		Msg("provider rejected request")
	return nil, upstream
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
}

func upstreamErrorFrom(status int, raw []byte) *UpstreamError {
	upstream := &UpstreamError{StatusCode: status}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		upstream.Body = body
		upstream.ErrorType, _ = body["error_type"].(string)
		upstream.RequestID, _ = body["request_id"].(string)
		if codes, ok := body["error_codes"].([]any); ok {
			for _, code := range codes {
				if s, ok := code.(string); ok {
					upstream.ErrorCodes = append(upstream.ErrorCodes, s)
				}
			}
		}
	}
	return upstream
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

func decodeBody(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	return decoded, nil
}
