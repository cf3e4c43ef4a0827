package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	json "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/uchase/storefront-payments/cmd/handlers"
	"github.com/uchase/storefront-payments/internal/env"
	"github.com/uchase/storefront-payments/internal/services/accounts"
	"github.com/uchase/storefront-payments/internal/services/applepay"
	"github.com/uchase/storefront-payments/internal/services/checkout"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	env.Load()

	accountsService := accounts.New(env.Env.RedisAddr)
	defer accountsService.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := accountsService.Ping(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	cancel()

	applePayValidator, err := applepay.NewValidator(
		env.Env.ApplePayCertPath,
		env.Env.ApplePayKeyPath,
		env.Env.ApplePayMerchantID,
		env.Env.DisplayName,
		env.Env.ApplePayInitiativeContext,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise Apple Pay validator")
	}

	handlers.Checkout = checkout.New(env.Env.CheckoutAPIBaseURL, env.Env.CheckoutSecretKey)
	handlers.ApplePay = applePayValidator
	handlers.Accounts = accountsService

	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     env.Env.FrontendOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept",
	}))

	app.Get("/", handlers.HandleHello)
	app.Get("/api/health", handlers.HandleHealth)
	app.Get("/.well-known/apple-developer-merchantid-domain-association.txt", handlers.HandleAppleDomainAssociation)

	app.Get("/api/payment-details/:id", handlers.HandleGetPaymentDetails)
	app.Post("/api/create-payment-session", handlers.HandleCreatePaymentSession)
	app.Post("/api/payment-contexts", handlers.HandleCreatePaymentContext)
	app.Post("/api/request-card-payment", handlers.HandleRequestPayment)
	app.Post("/api/paypal/request-payment", handlers.HandleRequestPayment)
	app.Post("/api/paymentLink", handlers.HandleCreatePaymentLink)
	app.Post("/api/hosted-payments", handlers.HandleCreateHostedPayments)
	app.Post("/api/submit-flow-session-payment", handlers.HandleSubmitFlowSession)

	app.Post("/api/apple-pay/validate-merchant", handlers.HandleApplePayValidateMerchant)
	app.Post("/api/apple-pay/session", handlers.HandleApplePaySession)
	app.Post("/api/apple-pay/complete", handlers.HandleApplePayComplete)

	app.Post("/api/register", handlers.HandleRegister)
	app.Post("/api/login", handlers.HandleLogin)
	app.Post("/api/logout", handlers.HandleLogout)
	app.Get("/api/me", handlers.HandleMe)

	log.Info().Str("port", env.Env.BackendPort).Msg("starting API server")
	if err := app.Listen(":" + env.Env.BackendPort); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
