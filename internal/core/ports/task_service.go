package ports

import (
	"context"
	"time"

	"github.com/taskhub/task-api/internal/core/domain"
)

// CreateTaskInput carries all data needed to create a new task.
type CreateTaskInput struct {
	OwnerID        string
	Title          string
	Description    string
	DueDate        *time.Time
	Status         string // empty means pending
	IdempotencyKey string
}

// TaskResult is returned by CreateTask.
type TaskResult struct {
	Task *domain.Task
	// AlreadyExisted is true when the Idempotency-Key matched an earlier create.
	AlreadyExisted bool
}

// ListTasksInput carries all parameters for the list endpoint.
type ListTasksInput struct {
	OwnerID string
	Status  string
	Page    int
	Limit   int
}

// ListTasksResult is returned by ListTasks.
type ListTasksResult struct {
	Items      []*domain.Task
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TaskService defines use-case operations for tasks.
type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*TaskResult, error)
	GetTask(ctx context.Context, id, ownerID string) (*domain.Task, error)
	ListTasks(ctx context.Context, input ListTasksInput) (*ListTasksResult, error)
	UpdateTask(ctx context.Context, id, ownerID string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id, ownerID string) (*domain.Task, error)
}
