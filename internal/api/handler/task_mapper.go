package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-api/internal/core/domain"
	"github.com/taskhub/task-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateTaskInput(req createTaskRequest, ownerID, idempotencyKey string) (ports.CreateTaskInput, error) {
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return ports.CreateTaskInput{}, err
	}
	return ports.CreateTaskInput{
		OwnerID:        ownerID,
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        due,
		Status:         req.Status,
		IdempotencyKey: idempotencyKey,
	}, nil
}

func toTaskPatch(req updateTaskRequest) (domain.TaskPatch, error) {
	var patch domain.TaskPatch
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return patch, echo.NewHTTPError(http.StatusUnprocessableEntity, "title must not be empty")
		}
		patch.Title = req.Title
	}
	patch.Description = req.Description
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return patch, err
		}
		patch.DueDate = due
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		patch.Status = &s
	}
	return patch, nil
}

func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, "due_date must be a date formatted as YYYY-MM-DD")
	}
	return &d, nil
}

// --- Service result → HTTP response ---

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
		Links:       taskLinks{Self: "/tasks/" + t.ID},
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(domain.DateLayout)
		resp.DueDate = &d
	}
	return resp
}

func toListTasksResponse(r *ports.ListTasksResult) listTasksResponse {
	data := make([]taskResponse, 0, len(r.Items))
	for _, t := range r.Items {
		data = append(data, toTaskResponse(t))
	}
	return listTasksResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}
