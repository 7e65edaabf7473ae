package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/ports"
	"github.com/naiarievilo/todoapp/internal/core/service"
)

// headerGate admits or rejects based on the raw Authorization value.
type headerGate map[string]service.Decision

func (g headerGate) Evaluate(_ context.Context, authorization string) service.Decision {
	if authorization == "" {
		return service.Decision{Outcome: service.PassThrough}
	}
	if d, ok := g[authorization]; ok {
		return d
	}
	return service.Decision{Outcome: service.Rejected, Err: domain.ErrSignatureInvalid}
}

type fakeAuthService struct{}

func (fakeAuthService) Register(context.Context, string, string) (*domain.TokenPair, *domain.Account, error) {
	return &domain.TokenPair{Access: "a", Refresh: "r"}, &domain.Account{ID: "abc"}, nil
}

func (fakeAuthService) Login(context.Context, string, string) (*domain.TokenPair, *domain.Account, error) {
	return nil, nil, domain.ErrBadCredentials
}

func (fakeAuthService) Reauthenticate(context.Context, string, string) (string, error) {
	return "renewed", nil
}

func (fakeAuthService) ConfirmAction(_ context.Context, id string, _ domain.TokenKind, _ string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func (fakeAuthService) RequestAction(context.Context, string, domain.TokenKind) error {
	return nil
}

func (fakeAuthService) ApplyAdminAction(_ context.Context, id string, _ ports.AdminAction) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func newTestRouter() *echo.Echo {
	user := &domain.Identity{Account: &domain.Account{ID: "u1"}, Authorities: []string{domain.RoleUser}}
	admin := &domain.Identity{Account: &domain.Account{ID: "a1"}, Authorities: []string{domain.RoleAdmin, domain.RoleUser}}
	gate := headerGate{
		"Bearer user":   {Outcome: service.Admitted, Identity: user},
		"Bearer admin":  {Outcome: service.Admitted, Identity: admin},
		"Bearer locked": {Outcome: service.Rejected, Err: domain.ErrAccountLocked},
	}
	reg := prometheus.NewRegistry()
	return NewRouter(Dependencies{
		AuthService: fakeAuthService{},
		Gate:        gate,
		Registerer:  reg,
		Gatherer:    reg,
	}, zerolog.Nop())
}

func TestRouter_Routes(t *testing.T) {
	e := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		body   string
		status int
		code   string
	}{
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK, ""},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK, ""},
		{"me without token", http.MethodGet, "/users/me", "", "", http.StatusUnauthorized, "HTTP_ERROR"},
		{"me with invalid token", http.MethodGet, "/users/me", "Bearer junk", "", http.StatusUnauthorized, "SIGNATURE_INVALID"},
		{"me when locked", http.MethodGet, "/users/me", "Bearer locked", "", http.StatusUnauthorized, "ACCOUNT_LOCKED"},
		{"me admitted", http.MethodGet, "/users/me", "Bearer user", "", http.StatusOK, ""},
		{"register is public", http.MethodPost, "/users", "", `{"email":"a@example.com","password":"secret-pw"}`, http.StatusCreated, ""},
		{"login failure", http.MethodPost, "/users/authentication", "", `{"email":"a@example.com","password":"x"}`, http.StatusBadRequest, "BAD_CREDENTIALS"},
		{"verification is public", http.MethodGet, "/users/abc/verification?token=t", "", "", http.StatusOK, ""},
		{"renewal bypasses the gate", http.MethodPost, "/users/abc/re-authentication", "Bearer junk", `{"accessToken":"a","refreshToken":"r"}`, http.StatusOK, ""},
		{"admin forbidden for users", http.MethodPost, "/admin/users/abc/lock", "Bearer user", "", http.StatusForbidden, "FORBIDDEN"},
		{"admin without token", http.MethodPost, "/admin/users/abc/lock", "", "", http.StatusUnauthorized, "HTTP_ERROR"},
		{"admin allowed", http.MethodPost, "/admin/users/abc/lock", "Bearer admin", "", http.StatusOK, ""},
		{"unknown route", http.MethodGet, "/nope", "", "", http.StatusNotFound, "HTTP_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.body != "" {
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			}
			if tc.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.code == "" {
				return
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Code != tc.code {
				t.Fatalf("expected code %s, got %+v", tc.code, body)
			}
		})
	}
}
