package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhub/task-api/internal/core/domain"
	"github.com/taskhub/task-api/internal/core/ports"
)

// TokenService issues and validates stateless HMAC-signed session tokens.
// The subject claim carries the username; nothing is persisted.
type TokenService struct {
	users  ports.UserRepository
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService fails when the secret is empty, the algorithm is not an
// HMAC method known to jwt, or ttl is not positive.
func NewTokenService(users ports.UserRepository, secret, algorithm string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token service: empty secret key")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token service: unsupported signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token service: non-positive token lifetime %s", ttl)
	}
	return &TokenService{
		users:  users,
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue mints a token for subject expiring after the configured lifetime.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	t := jwt.NewWithClaims(s.method, claims)
	return t.SignedString(s.secret)
}

// Validate checks signature, structure and expiry, then resolves the subject
// to a stored user. Every rejection is reported as domain.ErrInvalidToken;
// only store faults other than "not found" come back unwrapped.
func (s *TokenService) Validate(ctx context.Context, token string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	return user, nil
}

// TTL is the lifetime given to newly issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
