package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/ports"
)

type UserHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewUserHandler(authService ports.AuthService, log zerolog.Logger) *UserHandler {
	return &UserHandler{authService: authService, log: log}
}

// Register creates an unverified account and signs it in.
//
// @Summary      Register a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Account credentials"
// @Success      201   {object}  accountResponse
// @Header       201   {string}  Authorization  "Bearer access token"
// @Header       201   {string}  Refresh-Token  "Refresh token"
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, account, err := h.authService.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	setTokenHeaders(c, pair)
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// Login exchanges credentials for a token pair.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  accountResponse
// @Header       200   {string}  Authorization  "Bearer access token"
// @Header       200   {string}  Refresh-Token  "Refresh token"
// @Failure      400   {object}  errorResponse
// @Router       /users/authentication [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrBadCredentials
	}

	pair, account, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	setTokenHeaders(c, pair)
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Reauthenticate renews an expired access token.
//
// @Summary      Renew the access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Account ID"
// @Param        body  body      reauthenticationRequest  true  "Expired access token and live refresh token"
// @Success      200   {object}  messageResponse
// @Header       200   {string}  Authorization  "Bearer access token"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /users/{id}/re-authentication [post]
func (h *UserHandler) Reauthenticate(c echo.Context) error {
	var req reauthenticationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	access, err := h.authService.Reauthenticate(c.Request().Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderAuthorization, "Bearer "+access)
	return c.JSON(http.StatusOK, messageResponse{Message: "access token renewed"})
}

// Verify consumes a verification token.
//
// @Summary      Confirm the account email
// @Tags         users
// @Produce      json
// @Param        id     path      string  true  "Account ID"
// @Param        token  query     string  true  "Verification token"
// @Success      200    {object}  accountResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /users/{id}/verification [get]
func (h *UserHandler) Verify(c echo.Context) error {
	return h.confirm(c, domain.TokenVerification)
}

// Unlock consumes an unlock token.
//
// @Summary      Unlock the account
// @Tags         users
// @Produce      json
// @Param        id     path      string  true  "Account ID"
// @Param        token  query     string  true  "Unlock token"
// @Success      200    {object}  accountResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /users/{id}/unlock [get]
func (h *UserHandler) Unlock(c echo.Context) error {
	return h.confirm(c, domain.TokenUnlock)
}

// Enable consumes an enable token.
//
// @Summary      Re-enable the account
// @Tags         users
// @Produce      json
// @Param        id     path      string  true  "Account ID"
// @Param        token  query     string  true  "Enable token"
// @Success      200    {object}  accountResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /users/{id}/enable [get]
func (h *UserHandler) Enable(c echo.Context) error {
	return h.confirm(c, domain.TokenEnable)
}

func (h *UserHandler) confirm(c echo.Context, kind domain.TokenKind) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	account, err := h.authService.ConfirmAction(c.Request().Context(), c.Param("id"), kind, token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// RequestAction re-sends a verification, unlock or enable link.
//
// The response is the same whether or not the email belongs to an account.
//
// @Summary      Request an account action link
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      actionRequest  true  "Email and link kind"
// @Success      202   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /users/action-requests [post]
func (h *UserHandler) RequestAction(c echo.Context) error {
	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	kind := domain.TokenKind(req.Kind)
	if err := h.authService.RequestAction(c.Request().Context(), req.Email, kind); err != nil {
		h.log.Error().Err(err).Str("kind", req.Kind).Msg("action request failed")
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "if the account exists, a link has been sent"})
}

// Me returns the authenticated identity.
//
// @Summary      Current account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  identityResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityResponse{
		Account:     toAccountResponse(id.Account),
		Authorities: id.Authorities,
	})
}

func setTokenHeaders(c echo.Context, pair *domain.TokenPair) {
	h := c.Response().Header()
	h.Set(echo.HeaderAuthorization, "Bearer "+pair.Access)
	h.Set(HeaderRefreshToken, pair.Refresh)
	h.Add(echo.HeaderAccessControlExposeHeaders, echo.HeaderAuthorization+", "+HeaderRefreshToken)
}
