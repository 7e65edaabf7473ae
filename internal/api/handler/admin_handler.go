package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naiarievilo/todoapp/internal/core/ports"
)

// AdminHandler exposes operator lifecycle actions.
type AdminHandler struct {
	authService ports.AuthService
}

func NewAdminHandler(authService ports.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// Apply runs lock, unlock, disable or enable on an account.
//
// @Summary      Apply an operator action
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Account ID"
// @Param        action  path      string  true  "Action"  Enums(lock, unlock, disable, enable)
// @Success      200     {object}  accountResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /admin/users/{id}/{action} [post]
func (h *AdminHandler) Apply(c echo.Context) error {
	action := ports.AdminAction(c.Param("action"))
	switch action {
	case ports.AdminLock, ports.AdminUnlock, ports.AdminDisable, ports.AdminEnable:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action")
	}

	account, err := h.authService.ApplyAdminAction(c.Request().Context(), c.Param("id"), action)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}
