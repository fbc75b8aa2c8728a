package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/taskhub/task-api/internal/core/domain"
	"github.com/taskhub/task-api/internal/core/ports"
)

// TaskRepository implements ports.TaskRepository on SQLite.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = "id, owner_id, title, description, due_date, status, created_at, updated_at"

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks (owner_id, title, description, due_date, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.OwnerID, t.Title, t.Description, dueDateValue(t.DueDate), string(t.Status),
		t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return r.FindByID(ctx, strconv.FormatInt(id, 10), t.OwnerID)
}

// FindByID retrieves the owner's task. Non-numeric ids are reported as not found.
func (r *TaskRepository) FindByID(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND owner_id = ?",
		n, ownerID,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("query task: %w", err)
	}
	return t, nil
}

// List returns a page of the owner's tasks, newest first, and the total count.
func (r *TaskRepository) List(ctx context.Context, f ports.ListTasksFilter) ([]*domain.Task, int64, error) {
	where := " WHERE owner_id = ?"
	args := []any{f.OwnerID}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, f.Status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks"+where+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		append(args, f.Limit, (f.Page-1)*f.Limit)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0, f.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, total, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	n, err := strconv.ParseInt(t.ID, 10, 64)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, description = ?, due_date = ?, status = ?, updated_at = ? WHERE id = ? AND owner_id = ?",
		t.Title, t.Description, dueDateValue(t.DueDate), string(t.Status), t.UpdatedAt.UnixNano(),
		n, t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(res)
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND owner_id = ?", n, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*domain.Task, error) {
	var (
		t                    domain.Task
		id                   int64
		due                  sql.NullString
		status               string
		createdAt, updatedAt int64
	)
	if err := s.Scan(&id, &t.OwnerID, &t.Title, &t.Description, &due, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	t.ID = strconv.FormatInt(id, 10)
	t.Status = domain.TaskStatus(status)
	t.CreatedAt = fromUnixNano(createdAt)
	t.UpdatedAt = fromUnixNano(updatedAt)
	if due.Valid {
		d, err := time.Parse(domain.DateLayout, due.String)
		if err != nil {
			return nil, fmt.Errorf("parse due_date %q: %w", due.String, err)
		}
		t.DueDate = &d
	}
	return &t, nil
}

func dueDateValue(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format(domain.DateLayout)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
