package ports

import (
	"context"

	"github.com/taskhub/task-api/internal/core/domain"
)

// ListTasksFilter carries the query parameters for listing tasks.
type ListTasksFilter struct {
	OwnerID string // always set by the service layer
	Status  string // optional
	Page    int    // 1-based
	Limit   int
}

// TaskRepository defines persistence operations for tasks. Every lookup is
// scoped to an owner; a task belonging to someone else is reported as
// domain.ErrTaskNotFound.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id, ownerID string) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, int64, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id, ownerID string) error
}
