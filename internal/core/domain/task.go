package domain

import (
	"errors"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
)

// DateLayout is the wire and storage format of Task.DueDate.
const DateLayout = "2006-01-02"

var ErrTaskNotFound = errors.New("task not found")
var ErrInvalidTaskStatus = errors.New("invalid task status")

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusDone
}

// Task is a to-do item owned by a single user.
type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskPatch carries a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *TaskStatus
}

// Empty reports whether the patch would change nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && p.Status == nil
}

// Apply copies every present field of p onto t. It returns
// ErrInvalidTaskStatus without modifying t when the status is unknown.
func (p TaskPatch) Apply(t *Task) error {
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return nil
}
