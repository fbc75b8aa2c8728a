package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-api/internal/api/middleware"
	"github.com/taskhub/task-api/internal/core/domain"
	"github.com/taskhub/task-api/internal/core/ports"
)

type stubTaskService struct {
	createFn func(ctx context.Context, in ports.CreateTaskInput) (*ports.TaskResult, error)
	getFn    func(ctx context.Context, id, ownerID string) (*domain.Task, error)
	listFn   func(ctx context.Context, in ports.ListTasksInput) (*ports.ListTasksResult, error)
	updateFn func(ctx context.Context, id, ownerID string, patch domain.TaskPatch) (*domain.Task, error)
	deleteFn func(ctx context.Context, id, ownerID string) (*domain.Task, error)
}

func (s *stubTaskService) CreateTask(ctx context.Context, in ports.CreateTaskInput) (*ports.TaskResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubTaskService) GetTask(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return s.getFn(ctx, id, ownerID)
}

func (s *stubTaskService) ListTasks(ctx context.Context, in ports.ListTasksInput) (*ports.ListTasksResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubTaskService) UpdateTask(ctx context.Context, id, ownerID string, patch domain.TaskPatch) (*domain.Task, error) {
	return s.updateFn(ctx, id, ownerID, patch)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	return s.deleteFn(ctx, id, ownerID)
}

var testOwner = &domain.User{ID: "7", Username: "alice"}

func sampleTask() *domain.Task {
	due := time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	return &domain.Task{
		ID:        "t1",
		OwnerID:   testOwner.ID,
		Title:     "Write report",
		DueDate:   &due,
		Status:    domain.TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// authedContext returns a context as if the Auth middleware had run.
func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middleware.UserKey, testOwner)
	return c
}

func TestTaskHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		createFn: func(ctx context.Context, in ports.CreateTaskInput) (*ports.TaskResult, error) {
			if in.OwnerID != "7" || in.Title != "Write report" || in.IdempotencyKey != "key-1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.DueDate == nil || in.DueDate.Format(domain.DateLayout) != "2025-05-17" {
				t.Fatalf("due date not parsed: %v", in.DueDate)
			}
			return &ports.TaskResult{Task: sampleTask()}, nil
		},
	}
	handler := NewTaskHandler(stub)

	req := jsonRequest(http.MethodPost, "/tasks", `{"title":"Write report","due_date":"2025-05-17"}`)
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()

	if err := do(e, handler.Create, authedContext(e, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp taskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "t1" || resp.Status != "pending" || resp.DueDate == nil || *resp.DueDate != "2025-05-17" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.Links.Self != "/tasks/t1" {
		t.Fatalf("unexpected links: %+v", resp.Links)
	}
}

func TestTaskHandler_Create_IdempotentReplay(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		createFn: func(ctx context.Context, in ports.CreateTaskInput) (*ports.TaskResult, error) {
			return &ports.TaskResult{Task: sampleTask(), AlreadyExisted: true}, nil
		},
	}
	handler := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/tasks", `{"title":"Write report"}`)
	req.Header.Set("Idempotency-Key", "key-1")

	if err := do(e, handler.Create, authedContext(e, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay header")
	}
}

func TestTaskHandler_Create_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", "{", http.StatusBadRequest},
		{"missing title", `{"description":"x"}`, http.StatusUnprocessableEntity},
		{"bad due date", `{"title":"a","due_date":"17/05/2025"}`, http.StatusUnprocessableEntity},
		{"unknown status", `{"title":"a","status":"archived"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubTaskService{
				createFn: func(ctx context.Context, in ports.CreateTaskInput) (*ports.TaskResult, error) {
					t.Fatalf("should not be called")
					return nil, nil
				},
			}
			handler := NewTaskHandler(stub)

			rec := httptest.NewRecorder()
			_ = do(e, handler.Create, authedContext(e, jsonRequest(http.MethodPost, "/tasks", tt.body), rec))

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestTaskHandler_List(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		listFn: func(ctx context.Context, in ports.ListTasksInput) (*ports.ListTasksResult, error) {
			if in.OwnerID != "7" || in.Status != "pending" || in.Page != 2 || in.Limit != 5 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.ListTasksResult{
				Items: []*domain.Task{sampleTask()}, Total: 6, Page: 2, Limit: 5, TotalPages: 2,
			}, nil
		},
	}
	handler := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks?status=pending&page=2&limit=5", nil)

	if err := do(e, handler.List, authedContext(e, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp listTasksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Pagination.Total != 6 || resp.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_List_EmptyIsArray(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		listFn: func(ctx context.Context, in ports.ListTasksInput) (*ports.ListTasksResult, error) {
			return &ports.ListTasksResult{Page: 1, Limit: 20}, nil
		},
	}
	handler := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	if err := do(e, handler.List, authedContext(e, httptest.NewRequest(http.MethodGet, "/tasks", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if string(resp["data"]) != "[]" {
		t.Fatalf("expected empty array, got %s", resp["data"])
	}
}

func TestTaskHandler_List_BadPage(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	rec := httptest.NewRecorder()
	_ = do(e, handler.List, authedContext(e, httptest.NewRequest(http.MethodGet, "/tasks?page=first", nil), rec))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		getFn: func(ctx context.Context, id, ownerID string) (*domain.Task, error) {
			if id != "t9" || ownerID != "7" {
				t.Fatalf("unexpected args: %s %s", id, ownerID)
			}
			return nil, domain.ErrTaskNotFound
		},
	}
	handler := NewTaskHandler(stub)

	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/tasks/t9", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("t9")

	if err := do(e, handler.Get, c); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_Update_BuildsPatch(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		updateFn: func(ctx context.Context, id, ownerID string, patch domain.TaskPatch) (*domain.Task, error) {
			if patch.Title != nil || patch.Description != nil || patch.DueDate != nil {
				t.Fatalf("absent fields must stay nil: %+v", patch)
			}
			if patch.Status == nil || *patch.Status != domain.TaskStatusDone {
				t.Fatalf("status not set: %+v", patch)
			}
			task := sampleTask()
			task.Status = domain.TaskStatusDone
			return task, nil
		},
	}
	handler := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPatch, "/tasks/t1", `{"status":"done"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := do(e, handler.Update, c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTaskHandler_Update_EmptyTitle(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	rec := httptest.NewRecorder()
	c := authedContext(e, jsonRequest(http.MethodPut, "/tasks/t1", `{"title":"  "}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	_ = do(e, handler.Update, c)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestTaskHandler_Delete_ReturnsTask(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		deleteFn: func(ctx context.Context, id, ownerID string) (*domain.Task, error) {
			return sampleTask(), nil
		},
	}
	handler := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodDelete, "/tasks/t1", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := do(e, handler.Delete, c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp taskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "t1" || resp.Title != "Write report" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_RequiresUser(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/tasks", nil), rec)
	_ = do(e, handler.List, c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
