package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-api/internal/api/middleware"
	"github.com/taskhub/task-api/internal/core/domain"
)

// currentUser returns the user injected by the Auth middleware. A missing
// user means the route was mounted without Auth; treat it as unauthenticated.
func currentUser(c echo.Context) (*domain.User, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return u, nil
}
