package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/task-api/internal/core/domain"
)

type stubAuthRepo struct {
	users   map[string]*domain.User
	findErr error
	nextID  int
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = strconv.Itoa(r.nextID)
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func newTestAuthService(t *testing.T, repo *stubAuthRepo) (*AuthService, *TokenService) {
	t.Helper()
	tokens, err := NewTokenService(repo, "secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), tokens, zerolog.Nop()), tokens
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(t, repo)

	user, err := svc.Register(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatalf("expected user with generated id, got %+v", user)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubAuthRepo())

	if _, err := svc.Register(context.Background(), "", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubAuthRepo())

	_, _ = svc.Register(context.Background(), "bob", "pass")
	if _, err := svc.Register(context.Background(), "bob", "pass2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "carol", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != "carol" {
		t.Fatalf("expected sub carol, got %v", claims["sub"])
	}
	if _, ok := claims["exp"].(float64); !ok {
		t.Fatalf("expected numeric exp claim, got %v", claims["exp"])
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(t, repo)
	_, _ = svc.Register(context.Background(), "dave", "goodpass")

	_, errUnknown := svc.Login(context.Background(), "nouser", "anything")
	_, errWrong := svc.Login(context.Background(), "dave", "wrongpassword")

	if errUnknown != domain.ErrInvalidCredentials || errWrong != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", errUnknown, errWrong)
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubAuthRepo())

	if _, err := svc.Login(context.Background(), "", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreFailurePropagates(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(t, repo)
	storeErr := errors.New("connection reset")
	repo.findErr = storeErr

	if _, err := svc.Login(context.Background(), "erin", "pass"); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthService_Authenticate_RoundTrip(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(t, repo)
	_, _ = svc.Register(context.Background(), "frank", "pw")

	token, err := svc.Login(context.Background(), "frank", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user.Username != "frank" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Authenticate_DeletedUser(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(t, repo)
	_, _ = svc.Register(context.Background(), "gina", "pw")
	token, _ := svc.Login(context.Background(), "gina", "pw")

	delete(repo.users, "gina")

	if _, err := svc.Authenticate(context.Background(), token); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
