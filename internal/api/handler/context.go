package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// currentIdentity returns the identity the authentication gate attached to
// the request. Its absence means the route was reached without a bearer
// token.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	id, ok := domain.IdentityFrom(c.Request().Context())
	if !ok || id.Account == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}
