// Package handlers wires the HTTP surface to the payment, apple pay and
// account services. Each handler decodes one JSON body, runs the
// defaulting/validation layer, makes at most one upstream call and maps the
// outcome (or error) back to JSON.
package handlers

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	json "github.com/json-iterator/go"

	"github.com/uchase/storefront-payments/internal/dto"
	"github.com/uchase/storefront-payments/internal/env"
	"github.com/uchase/storefront-payments/internal/payload"
	"github.com/uchase/storefront-payments/internal/services/accounts"
	"github.com/uchase/storefront-payments/internal/services/applepay"
	"github.com/uchase/storefront-payments/internal/services/checkout"
)

// AccountsStore is the slice of the accounts service the handlers consume.
type AccountsStore interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, password, name string) (*accounts.User, error)
	Login(ctx context.Context, email, password string, remember bool) (*accounts.User, *accounts.Session, error)
	Lookup(ctx context.Context, token string) (*accounts.User, error)
	Logout(ctx context.Context, token string) error
}

var (
	Checkout *checkout.Client
	ApplePay *applepay.Validator
	Accounts AccountsStore
)

func HandleHello(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "Hello from Fiber!"})
}

func HandleAppleDomainAssociation(c *fiber.Ctx) error {
	path := filepath.Join(env.Env.WellKnownDir, "apple-developer-merchantid-domain-association.txt")
	return c.SendFile(path)
}

func HandleHealth(c *fiber.Ctx) error {
	redisStatus := "ok"
	if err := Accounts.Ping(c.Context()); err != nil {
		redisStatus = "unavailable"
	}
	return c.JSON(dto.HealthResponse{Status: "ok", Redis: redisStatus})
}

func decodeBody(c *fiber.Ctx) (payload.Payload, error) {
	var p payload.Payload
	if err := json.Unmarshal(c.Body(), &p); err != nil {
		return nil, err
	}
	if p == nil {
		p = payload.Payload{}
	}
	return p, nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}

// respondError maps the error taxonomy to HTTP: validation failures are
// 400s that never reached the network, provider rejections keep their
// original status and details, transport failures distinguish unreachable
// from timed out.
func respondError(c *fiber.Ctx, err error) error {
	var ve *payload.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Error:     ve.Error(),
			Operation: ve.Operation,
			Missing:   ve.Missing,
		})
	}

	var upstream *checkout.UpstreamError
	if errors.As(err, &upstream) {
		if upstream.Body != nil {
			return c.Status(upstream.StatusCode).JSON(upstream.Body)
		}
		return c.Status(upstream.StatusCode).JSON(dto.ErrorResponse{Error: upstream.Error()})
	}

	switch {
	case errors.Is(err, checkout.ErrServiceUnavailable), errors.Is(err, applepay.ErrUnreachable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: "upstream service is unavailable", Details: err.Error(),
		})
	case errors.Is(err, checkout.ErrGatewayTimeout), errors.Is(err, applepay.ErrTimeout):
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{
			Error: "upstream service timed out", Details: err.Error(),
		})
	case errors.Is(err, applepay.ErrInvalidTarget):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid validation URL", Details: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: "request failed", Details: err.Error(),
	})
}
