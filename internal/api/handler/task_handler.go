package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-api/internal/api/metrics"
	"github.com/taskhub/task-api/internal/core/ports"
)

const (
	headerIdempotencyKey     = "Idempotency-Key"
	headerIdempotentReplayed = "Idempotent-Replayed"
)

// TaskHandler handles HTTP requests for the authenticated user's tasks.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Replays the original task when repeated"
// @Param        body             body      createTaskRequest  true   "Task details"
// @Success      201              {object}  taskResponse
// @Success      200              {object}  taskResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	input, err := toCreateTaskInput(req, user.ID, c.Request().Header.Get(headerIdempotencyKey))
	if err != nil {
		return err
	}

	result, err := h.service.CreateTask(c.Request().Context(), input)
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		metrics.TasksIdempotentReplaysTotal.Inc()
		c.Response().Header().Set(headerIdempotentReplayed, "true")
		return c.JSON(http.StatusOK, toTaskResponse(result.Task))
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(result.Task.Status)).Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(result.Task))
}

// List handles GET /tasks.
//
// @Summary      List tasks
// @Description  Newest first. limit defaults to 20 and is capped at 100.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending or done"
// @Param        page    query     int     false  "Page number, from 1"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  listTasksResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      422     {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var (
		status      string
		page, limit int
	)
	if err := echo.QueryParamsBinder(c).
		String("status", &status).
		Int("page", &page).
		Int("limit", &limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page and limit must be integers")
	}

	result, err := h.service.ListTasks(c.Request().Context(), ports.ListTasksInput{
		OwnerID: user.ID,
		Status:  status,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListTasksResponse(result))
}

// Get handles GET /tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	task, err := h.service.GetTask(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update handles PUT and PATCH /tasks/:id. Only the fields present in the
// body are changed.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /tasks/{id} [put]
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	patch, err := toTaskPatch(req)
	if err != nil {
		return err
	}

	task, err := h.service.UpdateTask(c.Request().Context(), c.Param("id"), user.ID, patch)
	if err != nil {
		return err
	}

	metrics.TasksUpdatedTotal.Inc()
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /tasks/:id and returns the removed task.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	task, err := h.service.DeleteTask(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		return err
	}

	metrics.TasksDeletedTotal.Inc()
	return c.JSON(http.StatusOK, toTaskResponse(task))
}
