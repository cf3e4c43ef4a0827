// Package accounts is the redis-backed identity and session store behind
// the storefront's register/login endpoints. Users and sessions live
// outside the process, so nothing here survives in local memory between
// requests.
package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var (
	ErrUserExists         = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found or expired")
)

const (
	sessionTTL         = 24 * time.Hour
	rememberSessionTTL = 30 * 24 * time.Hour
)

type User struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
	Salt         string `json:"salt"`
	CreatedAt    string `json:"created_at"`
}

type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	client *redis.Client
}

func New(addr string) *Service {
	return &Service{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     "",
			DB:           0,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
	}
}

func (s *Service) Ping(ctx context.Context) error {
	if _, err := s.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (s *Service) Close() error {
	return s.client.Close()
}

// Register stores a new user. Registration is atomic on the user key, so
// two concurrent registrations for one email cannot both win.
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, error) {
	salt, err := newSalt()
	if err != nil {
		return nil, err
	}
	user := &User{
		Email:        email,
		Name:         name,
		PasswordHash: hashPassword(password, salt),
		Salt:         salt,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	ok, err := s.client.SetNX(ctx, userKey(email), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to store user: %w", err)
	}
	if !ok {
		return nil, ErrUserExists
	}
	return user, nil
}

// Login checks the password and issues a session token. The remember flag
// extends the session lifetime.
func (s *Service) Login(ctx context.Context, email, password string, remember bool) (*User, *Session, error) {
	data, err := s.client.Get(ctx, userKey(email)).Result()
	if err == redis.Nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	var user User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	expected := hashPassword(password, user.Salt)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(user.PasswordHash)) != 1 {
		return nil, nil, ErrInvalidCredentials
	}

	ttl := ttlFor(remember)
	session := &Session{
		Token:     uuid.NewString(),
		Email:     user.Email,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.client.Set(ctx, sessionKey(session.Token), user.Email, ttl).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &user, session, nil
}

// Logout invalidates a session token server-side. A logged-out token stops
// authenticating immediately instead of lingering until its TTL expires.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Lookup resolves a session token back to its user.
func (s *Service) Lookup(ctx context.Context, token string) (*User, error) {
	email, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	data, err := s.client.Get(ctx, userKey(email)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	var user User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func userKey(email string) string {
	return "accounts:user:" + email
}

func sessionKey(token string) string {
	return "accounts:session:" + token
}

func ttlFor(remember bool) time.Duration {
	if remember {
		return rememberSessionTTL
	}
	return sessionTTL
}

func newSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}
