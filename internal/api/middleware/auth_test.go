package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/service"
)

type stubGate struct {
	decision service.Decision
	header   string
}

func (g *stubGate) Evaluate(_ context.Context, authorization string) service.Decision {
	g.header = authorization
	return g.decision
}

func newContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthenticate_PassThrough(t *testing.T) {
	gate := &stubGate{decision: service.Decision{Outcome: service.PassThrough}}
	c, rec := newContext("")

	called := false
	handler := Authenticate(gate)(func(c echo.Context) error {
		called = true
		if _, ok := IdentityFrom(c); ok {
			t.Fatalf("pass-through request must not carry an identity")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to run, called=%v code=%d", called, rec.Code)
	}
}

func TestAuthenticate_Admitted(t *testing.T) {
	identity := &domain.Identity{
		Account:     &domain.Account{ID: "acc-1"},
		Authorities: []string{domain.RoleUser},
	}
	gate := &stubGate{decision: service.Decision{Outcome: service.Admitted, Identity: identity}}
	c, _ := newContext("Bearer abc")

	handler := Authenticate(gate)(func(c echo.Context) error {
		if got, ok := c.Get(IdentityKey).(*domain.Identity); !ok || got != identity {
			t.Fatalf("identity not set on echo context")
		}
		if got, ok := domain.IdentityFrom(c.Request().Context()); !ok || got != identity {
			t.Fatalf("identity not set on request context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gate.header != "Bearer abc" {
		t.Fatalf("gate saw header %q", gate.header)
	}
}

func TestAuthenticate_Rejected(t *testing.T) {
	gate := &stubGate{decision: service.Decision{Outcome: service.Rejected, Err: domain.ErrAccountLocked}}
	c, _ := newContext("Bearer abc")

	handler := Authenticate(gate)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

func TestRequireIdentity(t *testing.T) {
	c, _ := newContext("")
	handler := RequireIdentity()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	var he *echo.HTTPError
	if err := handler(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
