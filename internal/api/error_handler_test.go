package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

func render(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
	return rec.Code, body
}

func TestHTTPErrorHandler_Mappings(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{domain.ErrSignatureInvalid, 401, "SIGNATURE_INVALID", invalidTokenMessage},
		{domain.ErrClaimsMissing, 401, "CLAIMS_MISSING", invalidTokenMessage},
		{domain.ErrTokenExpired, 401, "TOKEN_EXPIRED", invalidTokenMessage},
		{domain.ErrTypeMismatch, 401, "TYPE_MISMATCH", invalidTokenMessage},
		{domain.ErrTokenAlreadyUsed, 401, "TOKEN_ALREADY_USED", invalidTokenMessage},
		{domain.ErrAccountNotFound, 404, "ACCOUNT_NOT_FOUND", "account not found"},
		{fmt.Errorf("%w: %w", domain.ErrAccountNotFound, domain.ErrAccountUnverifiedExpired), 404, "ACCOUNT_NOT_FOUND", "account not found"},
		{domain.ErrBadCredentials, 400, "BAD_CREDENTIALS", "bad credentials"},
		{domain.ErrAccountLocked, 401, "ACCOUNT_LOCKED", "account is locked"},
		{domain.ErrAccountDisabled, 401, "ACCOUNT_DISABLED", "account is disabled"},
		{domain.ErrAccessTokenCreationFailed, 400, "ACCESS_TOKEN_CREATION_FAILED", "ACCESS_TOKEN_CREATION_FAILED"},
		{domain.ErrAccountExists, 409, "ACCOUNT_EXISTS", "account already exists"},
		{domain.ErrForbidden, 403, "FORBIDDEN", "access forbidden"},
		{domain.ErrInvalidInput, 400, "INVALID_INPUT", "invalid input"},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			wrapped := fmt.Errorf("renew: access token: %w", tc.err)
			status, body := render(t, wrapped)
			if status != tc.status || body.Code != tc.code || body.Error != tc.msg {
				t.Fatalf("got %d %+v, want %d %s %q", status, body, tc.status, tc.code, tc.msg)
			}
		})
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	status, body := render(t, echo.NewHTTPError(http.StatusBadRequest, "token is required"))
	if status != http.StatusBadRequest || body.Error != "token is required" || body.Code != "HTTP_ERROR" {
		t.Fatalf("unexpected response: %d %+v", status, body)
	}
}

func TestHTTPErrorHandler_UnexpectedError(t *testing.T) {
	status, body := render(t, errors.New("mongo: connection pool closed"))
	if status != http.StatusInternalServerError || body.Error != "internal server error" || body.Code != "INTERNAL" {
		t.Fatalf("unexpected response: %d %+v", status, body)
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusTeapot)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)
	if rec.Code != http.StatusTeapot || rec.Body.Len() != 0 {
		t.Fatalf("committed response was overwritten")
	}
}
