// Package applepay validates Apple Pay merchant sessions over a
// mutually-authenticated TLS connection. The merchant certificate and key
// are loaded once at startup; each validation is a single POST to the
// Apple-supplied validation URL with the response forwarded verbatim.
package applepay

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnreachable   = errors.New("merchant validation endpoint is unreachable")
	ErrTimeout       = errors.New("merchant validation timed out")
	ErrInvalidTarget = errors.New("validation URL is not an Apple Pay endpoint")
)

// validationRequest is the body Apple expects on the session endpoint.
type validationRequest struct {
	MerchantIdentifier string `json:"merchantIdentifier"`
	DisplayName        string `json:"displayName"`
	Initiative         string `json:"initiative"`
	InitiativeContext  string `json:"initiativeContext"`
}

type Validator struct {
	merchantID        string
	displayName       string
	initiativeContext string
	client            *http.Client
}

// NewValidator loads the merchant certificate/key pair and builds the
// mutual-TLS client used for every validation call.
func NewValidator(certPath, keyPath, merchantID, displayName, initiativeContext string) (*Validator, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load Apple Pay merchant certificate: %w", err)
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		},
	}
	return &Validator{
		merchantID:        merchantID,
		displayName:       displayName,
		initiativeContext: initiativeContext,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// ValidateMerchant posts the merchant identity to the frontend-supplied
// validation URL and returns Apple's opaque session object untouched.
func (v *Validator) ValidateMerchant(ctx context.Context, validationURL string) (map[string]any, error) {
	if err := checkValidationURL(validationURL); err != nil {
		return nil, err
	}
	return v.startSession(ctx, validationURL)
}

func (v *Validator) startSession(ctx context.Context, validationURL string) (map[string]any, error) {
	payload := validationRequest{
		MerchantIdentifier: v.merchantID,
		DisplayName:        v.displayName,
		Initiative:         "web",
		InitiativeContext:  v.initiativeContext,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, validationURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("merchant validation returned status %d", resp.StatusCode)
	}
	var session map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode merchant session: %w", err)
	}
	log.Info().Str("url", validationURL).Msg("merchant verified")
	return session, nil
}

// checkValidationURL rejects anything that is not an https endpoint on an
// apple.com host before the merchant certificate is presented to it.
func checkValidationURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidTarget, u.Scheme)
	}
	host := u.Hostname()
	if host != "apple.com" && !strings.HasSuffix(host, ".apple.com") {
		return fmt.Errorf("%w: host %q", ErrInvalidTarget, host)
	}
	return nil
}
