package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/uchase/storefront-payments/internal/dto"
	"github.com/uchase/storefront-payments/internal/services/accounts"
)

const sessionCookieName = "session_token"

func HandleRegister(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	email := p.String("email")
	password := p.String("password")
	if email == "" || password == "" {
		return badRequest(c, "email and password are required")
	}

	user, err := Accounts.Register(c.Context(), email, password, p.String("name"))
	if err != nil {
		if errors.Is(err, accounts.ErrUserExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return respondError(c, err)
	}
	log.Info().Str("email", user.Email).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		User: dto.UserResponse{Email: user.Email, Name: user.Name},
	})
}

func HandleLogin(c *fiber.Ctx) error {
	p, err := decodeBody(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}
	email := p.String("email")
	password := p.String("password")
	if email == "" || password == "" {
		return badRequest(c, "email and password are required")
	}
	remember, _ := p["remember"].(bool)

	user, session, err := Accounts.Login(c.Context(), email, password, remember)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return c.JSON(dto.AuthResponse{
		User: dto.UserResponse{Email: user.Email, Name: user.Name},
	})
}

func HandleMe(c *fiber.Ctx) error {
	token := c.Cookies(sessionCookieName)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "not logged in"})
	}
	user, err := Accounts.Lookup(c.Context(), token)
	if err != nil {
		if errors.Is(err, accounts.ErrSessionNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "session expired"})
		}
		return respondError(c, err)
	}
	return c.JSON(dto.AuthResponse{
		User: dto.UserResponse{Email: user.Email, Name: user.Name},
	})
}

func HandleLogout(c *fiber.Ctx) error {
	// The session key is deleted server-side; expiring the cookie alone
	// would leave a captured token valid until its TTL runs out.
	if token := c.Cookies(sessionCookieName); token != "" {
		if err := Accounts.Logout(c.Context(), token); err != nil {
			return respondError(c, err)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return c.JSON(dto.MessageResponse{Message: "logged out"})
}
