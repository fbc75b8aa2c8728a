package handler

import "time"

// --- Request / Response types ---

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	DueDate     string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status"      validate:"omitempty,oneof=pending done"`
}

// updateTaskRequest is used by both PUT and PATCH. Absent fields are kept.
type updateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	DueDate     *string `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	Status      *string `json:"status"      validate:"omitempty,oneof=pending done"`
}

type taskLinks struct {
	Self string `json:"self"`
}

type taskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *string   `json:"due_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Links       taskLinks `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listTasksResponse struct {
	Data       []taskResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}
