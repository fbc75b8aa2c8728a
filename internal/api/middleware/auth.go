package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-api/internal/api/metrics"
	"github.com/taskhub/task-api/internal/core/domain"
	"github.com/taskhub/task-api/internal/core/ports"
)

// UserKey is the echo.Context key holding the authenticated *domain.User.
const UserKey = "user"

// Auth resolves the bearer token to a user and injects it into context.
// Every token failure is reported as the same 401; store faults pass through.
func Auth(authn ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenValidationsTotal.WithLabelValues("missing").Inc()
				return unauthorized(c, "not authenticated")
			}

			user, err := authn.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) {
					metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
					return unauthorized(c, "invalid token")
				}
				metrics.TokenValidationsTotal.WithLabelValues("error").Inc()
				return err
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user injected by Auth, or nil outside an
// authenticated route.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(UserKey).(*domain.User)
	return u
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
