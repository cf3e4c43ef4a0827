package env

import (
	"os"

	"github.com/rs/zerolog/log"
)

type EnvironmentVariables struct {
	BackendPort    string
	FrontendOrigin string
	RedisAddr      string

	CheckoutAPIBaseURL string
	CheckoutSecretKey  string
	CheckoutPublicKey  string

	ProcessingChannelID string
	SuccessRedirectURL  string
	FailureRedirectURL  string
	DefaultLocale       string
	DisplayName         string

	ApplePayCertPath          string
	ApplePayKeyPath           string
	ApplePayMerchantID        string
	ApplePayInitiativeContext string

	WellKnownDir string
}

var (
	Env *EnvironmentVariables
)

func Load() {
	Env = &EnvironmentVariables{
		BackendPort:    getOptionalEnv("BACKEND_PORT", "5000"),
		FrontendOrigin: getRequiredEnv("FRONTEND_ORIGIN"),
		RedisAddr:      getRequiredEnv("REDIS_ADDR"),

		CheckoutAPIBaseURL: getOptionalEnv("CHECKOUT_API_BASE_URL", "https://api.sandbox.checkout.com"),
		CheckoutSecretKey:  getRequiredEnv("CHECKOUT_SECRET_KEY"),
		CheckoutPublicKey:  getRequiredEnv("CHECKOUT_PUBLIC_KEY"),

		ProcessingChannelID: getRequiredEnv("CHECKOUT_PROCESSING_CHANNEL_ID"),
		SuccessRedirectURL:  getOptionalEnv("SUCCESS_REDIRECT_URL", ""),
		FailureRedirectURL:  getOptionalEnv("FAILURE_REDIRECT_URL", ""),
		DefaultLocale:       getOptionalEnv("DEFAULT_LOCALE", "en-GB"),
		DisplayName:         getOptionalEnv("DISPLAY_NAME", "My Store"),

		ApplePayCertPath:          getOptionalEnv("APPLE_PAY_CERT_PATH", "./certificate_sandbox.pem"),
		ApplePayKeyPath:           getOptionalEnv("APPLE_PAY_KEY_PATH", "./certificate_sandbox.key"),
		ApplePayMerchantID:        getOptionalEnv("APPLE_PAY_MERCHANT_ID", "merchant.com.uchase.sandbox"),
		ApplePayInitiativeContext: getOptionalEnv("APPLE_PAY_INITIATIVE_CONTEXT", ""),

		WellKnownDir: getOptionalEnv("WELL_KNOWN_DIR", "./.well-known"),
	}
	if Env.SuccessRedirectURL == "" {
		Env.SuccessRedirectURL = Env.FrontendOrigin + "/success"
	}
	if Env.FailureRedirectURL == "" {
		Env.FailureRedirectURL = Env.FrontendOrigin + "/failure"
	}
	if Env.ApplePayInitiativeContext == "" {
		Env.ApplePayInitiativeContext = stripScheme(Env.FrontendOrigin)
	}

	log.Info().
		Str("port", Env.BackendPort).
		Str("frontendOrigin", Env.FrontendOrigin).
		Str("redis", Env.RedisAddr).
		Str("checkoutApi", Env.CheckoutAPIBaseURL).
		Msg("environment variables loaded")
}

func getRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatal().Str("key", key).Msg("required environment variable is not set")
	}
	return value
}

func getOptionalEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func stripScheme(origin string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if len(origin) > len(prefix) && origin[:len(prefix)] == prefix {
			return origin[len(prefix):]
		}
	}
	return origin
}

func IsProduction() bool {
	return getOptionalEnv("ENVIRONMENT", "development") == "production"
}

func IsDevelopment() bool {
	return !IsProduction()
}
