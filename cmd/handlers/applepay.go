package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/uchase/storefront-payments/internal/dto"
)

func HandleApplePayValidateMerchant(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	validationURL := p.String("validationURL")
	if validationURL == "" {
		return badRequest(c, "Missing validationURL")
	}
	session, err := ApplePay.ValidateMerchant(c.Context(), validationURL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

// HandleApplePaySession tokenizes the Apple Pay payment data and pays with
// the resulting provider token. Two upstream steps, reported separately: a
// tokenization failure never reaches the payments endpoint.
func HandleApplePaySession(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	tokenData, _ := p["tokenData"].(map[string]any)
	if tokenData == nil {
		return badRequest(c, "Missing tokenData")
	}
	amount, ok := p.Number("amount")
	if !ok || amount <= 0 {
		return badRequest(c, "Missing amount")
	}
	currency := p.String("currency")
	if currency == "" {
		currency = "USD"
	}

	walletToken, err := Checkout.RequestWalletToken(c.Context(), "applepay", tokenData)
	if err != nil {
		log.Warn().Err(err).Msg("apple pay tokenization failed")
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Tokenization failed", Details: err.Error(),
		})
	}

	reference := p.String("reference")
	if reference == "" {
		reference = "applepay-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	paymentRequest := map[string]any{
		"source": map[string]any{
			"type":  "token",
			"token": walletToken.Token,
		},
		"amount":    amount,
		"currency":  currency,
		"reference": reference,
	}
	resp, err := Checkout.RequestPayment(c.Context(), paymentRequest)
	if err != nil {
		log.Warn().Err(err).Msg("apple pay payment failed")
		return c.Status(fiber.StatusBadRequest).JSON(dto.ApplePayPaymentResponse{
			Approved: false,
			Status:   "Failed",
			Error:    err.Error(),
		})
	}

	status := stringField(resp, "status")
	return c.JSON(dto.ApplePayPaymentResponse{
		Approved:  status == "Authorized" || status == "Captured",
		Status:    status,
		PaymentID: stringField(resp, "id"),
	})
}

// HandleApplePayComplete acknowledges the wallet sheet closing; the token
// is echoed back for the storefront's own bookkeeping.
func HandleApplePayComplete(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	return c.JSON(dto.ApplePayCompleteResponse{
		Status:  "success",
		Message: "Payment token received",
		Token:   p,
	})
}
