package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/uchase/storefront-payments/internal/env"
	"github.com/uchase/storefront-payments/internal/normalize"
	"github.com/uchase/storefront-payments/internal/payload"
)

func requestDefaults() payload.Defaults {
	return payload.Defaults{
		ProcessingChannelID: env.Env.ProcessingChannelID,
		SuccessURL:          env.Env.SuccessRedirectURL,
		FailureURL:          env.Env.FailureRedirectURL,
		Locale:              env.Env.DefaultLocale,
		DisplayName:         env.Env.DisplayName,
	}
}

func HandleCreatePaymentSession(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	prepared, err := payload.ForPaymentSession(p, requestDefaults())
	if err != nil {
		return respondError(c, err)
	}
	resp, err := Checkout.CreatePaymentSession(c.Context(), prepared)
	if err != nil {
		return respondError(c, err)
	}
	log.Info().Str("sessionId", stringField(resp, "id")).Msg("payment session created")
	return c.JSON(resp)
}

func HandleCreatePaymentContext(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	prepared, err := payload.ForPaymentContext(p, requestDefaults())
	if err != nil {
		return respondError(c, err)
	}
	resp, err := Checkout.CreatePaymentContext(c.Context(), prepared)
	if err != nil {
		return respondError(c, err)
	}
	log.Info().Str("contextId", stringField(resp, "id")).Msg("payment context created")
	return c.JSON(resp)
}

// HandleRequestPayment serves both the direct-card route and the PayPal
// approval route; the two differ only in which source shape the payload
// carries.
func HandleRequestPayment(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	prepared, err := payload.ForPayment(p)
	if err != nil {
		return respondError(c, err)
	}
	resp, err := Checkout.RequestPayment(c.Context(), prepared)
	if err != nil {
		return respondError(c, err)
	}
	log.Info().
		Str("paymentId", stringField(resp, "id")).
		Str("status", stringField(resp, "status")).
		Msg("payment requested")
	return c.JSON(resp)
}

func HandleCreatePaymentLink(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	resp, err := Checkout.CreatePaymentLink(c.Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func HandleCreateHostedPayments(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	resp, err := Checkout.CreateHostedPaymentsSession(c.Context(), p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// HandleSubmitFlowSession forwards collected flow session data upstream and
// relays the provider's answer with its original status code.
func HandleSubmitFlowSession(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	sessionID, prepared, err := payload.ForFlowSubmit(p)
	if err != nil {
		return respondError(c, err)
	}
	status, body, err := Checkout.SubmitPaymentSession(c.Context(), sessionID, prepared)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(status).JSON(body)
}

func HandleGetPaymentDetails(c *fiber.Ctx) error {
	details, err := Checkout.GetPaymentDetails(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(normalize.Value(details))
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
