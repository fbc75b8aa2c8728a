package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-api/internal/core/domain"
	"github.com/taskhub/task-api/internal/core/ports"
)

// AuthService implements registration, login and bearer-token authentication.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens *TokenService
	log    zerolog.Logger

	// decoyHash is verified against when the username is unknown so both
	// login failure paths cost one bcrypt comparison.
	decoyHash string
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens *TokenService, log zerolog.Logger) *AuthService {
	decoy, err := hasher.Hash("decoy-password")
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare decoy hash")
	}
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log, decoyHash: decoy}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.log.Info().Str("username", username).Msg("registration rejected: username taken")
		}
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login returns a fresh access token. An unknown username and a wrong
// password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.decoyHash)
			s.log.Debug().Str("username", username).Msg("login failed")
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Debug().Str("username", username).Msg("login failed")
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return token, nil
}

// Authenticate resolves a bearer token; failures are domain.ErrInvalidToken.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return s.tokens.Validate(ctx, token)
}
