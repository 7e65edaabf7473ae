package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// RequireAuthority enforces authority-based access control. The identity
// must hold at least one of the given authorities (a role or a permission).
func RequireAuthority(authorities ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !id.HasAuthority(authorities...) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
