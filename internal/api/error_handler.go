package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// invalidTokenMessage is shared by every token failure so responses do not
// reveal which check failed; the code field carries that detail.
const invalidTokenMessage = "JWT is not valid or could not be processed"

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
	msg    string
}

// errorMappings is checked in order; the first errors.Is match wins.
// ErrAccountNotFound precedes ErrAccountUnverifiedExpired so an expired
// unverified account renders exactly like a missing one.
var errorMappings = []errorMapping{
	{domain.ErrSignatureInvalid, http.StatusUnauthorized, "SIGNATURE_INVALID", invalidTokenMessage},
	{domain.ErrClaimsMissing, http.StatusUnauthorized, "CLAIMS_MISSING", invalidTokenMessage},
	{domain.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED", invalidTokenMessage},
	{domain.ErrTypeMismatch, http.StatusUnauthorized, "TYPE_MISMATCH", invalidTokenMessage},
	{domain.ErrTokenAlreadyUsed, http.StatusUnauthorized, "TOKEN_ALREADY_USED", invalidTokenMessage},
	{domain.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "account not found"},
	{domain.ErrAccountUnverifiedExpired, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "account not found"},
	{domain.ErrBadCredentials, http.StatusBadRequest, "BAD_CREDENTIALS", "bad credentials"},
	{domain.ErrAccountLocked, http.StatusUnauthorized, "ACCOUNT_LOCKED", "account is locked"},
	{domain.ErrAccountDisabled, http.StatusUnauthorized, "ACCOUNT_DISABLED", "account is disabled"},
	{domain.ErrAccessTokenCreationFailed, http.StatusBadRequest, "ACCESS_TOKEN_CREATION_FAILED", "ACCESS_TOKEN_CREATION_FAILED"},
	{domain.ErrAccountExists, http.StatusConflict, "ACCOUNT_EXISTS", "account already exists"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "access forbidden"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", "invalid input"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status, code and message.
//   - Logs unexpected errors and reports them to Sentry without leaking
//     details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<CODE>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			log.Debug().Err(err).Str("code", m.code).Str("path", c.Path()).Msg("request rejected")
			return m.status, errorResponse{Error: m.msg, Code: m.code}
		}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Code: "HTTP_ERROR"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")
	sentry.CaptureException(err)

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "INTERNAL"}
}
