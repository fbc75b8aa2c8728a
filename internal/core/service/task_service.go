package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-api/internal/core/domain"
	"github.com/taskhub/task-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	// maxPage keeps (page-1)*limit far from int overflow in the stores.
	maxPage = math.MaxInt32
)

// IdempotencyStore remembers which task an Idempotency-Key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID, key string) (taskID string, found bool, err error)
	Remember(ctx context.Context, ownerID, key, taskID string) error
}

type TaskService struct {
	repo   ports.TaskRepository
	idem   IdempotencyStore
	logger zerolog.Logger
}

// NewTaskService builds a TaskService. idem may be nil, in which case
// Idempotency-Key values are ignored.
func NewTaskService(repo ports.TaskRepository, idem IdempotencyStore, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, idem: idem, logger: logger}
}

// CreateTask creates a new task. If an idempotency key is provided and
// already seen for this owner, the previously created task is returned.
func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*ports.TaskResult, error) {
	status := domain.TaskStatus(input.Status)
	if status == "" {
		status = domain.TaskStatusPending
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidTaskStatus
	}

	useIdem := s.idem != nil && input.IdempotencyKey != ""
	if useIdem {
		id, found, err := s.idem.Lookup(ctx, input.OwnerID, input.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("idempotency lookup failed, creating anyway")
		} else if found {
			existing, err := s.repo.FindByID(ctx, id, input.OwnerID)
			if err == nil {
				s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Str("task_id", existing.ID).Msg("idempotent replay")
				return &ports.TaskResult{Task: existing, AlreadyExisted: true}, nil
			}
		}
	}

	now := time.Now().UTC()
	task := &domain.Task{
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create task")
		return nil, err
	}

	if useIdem {
		if err := s.idem.Remember(ctx, input.OwnerID, input.IdempotencyKey, created.ID); err != nil {
			s.logger.Warn().Err(err).Str("task_id", created.ID).Msg("failed to store idempotency key")
		}
	}

	s.logger.Info().Str("task_id", created.ID).Str("owner_id", input.OwnerID).Msg("task created")
	return &ports.TaskResult{Task: created}, nil
}

func (s *TaskService) GetTask(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, id, ownerID)
}

// ListTasks returns one page of the owner's tasks. Limit defaults to 20 and
// is capped at 100; page is clamped to [1, math.MaxInt32].
func (s *TaskService) ListTasks(ctx context.Context, input ports.ListTasksInput) (*ports.ListTasksResult, error) {
	if input.Status != "" && !domain.TaskStatus(input.Status).Valid() {
		return nil, domain.ErrInvalidTaskStatus
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListTasksFilter{
		OwnerID: input.OwnerID,
		Status:  input.Status,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListTasksResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateTask applies patch to the owner's task and persists the result.
func (s *TaskService) UpdateTask(ctx context.Context, id, ownerID string, patch domain.TaskPatch) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return task, nil
	}

	if err := patch.Apply(task); err != nil {
		return nil, err
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", task.ID).Msg("task updated")
	return task, nil
}

// DeleteTask removes the owner's task and returns it as it was.
func (s *TaskService) DeleteTask(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", task.ID).Msg("task deleted")
	return task, nil
}
