package ports

import (
	"context"

	"github.com/taskhub/task-api/internal/core/domain"
)

// UserRepository is the credential store used by authentication.
type UserRepository interface {
	// FindByUsername returns domain.ErrUserNotFound when no user matches exactly.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create stores the user and returns it with its generated ID.
	// A username collision returns domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
