package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/service"
)

// IdentityKey is the echo context key under which the admitted identity is stored.
const IdentityKey = "identity"

// Gate decides what happens to a request from its Authorization header.
type Gate interface {
	Evaluate(ctx context.Context, authorization string) service.Decision
}

// Authenticate runs the request authentication gate. Requests without a
// bearer token continue unauthenticated; rejected requests never reach next.
func Authenticate(gate Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			d := gate.Evaluate(req.Context(), req.Header.Get(echo.HeaderAuthorization))

			switch d.Outcome {
			case service.PassThrough:
				return next(c)
			case service.Admitted:
				c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), d.Identity)))
				c.Set(IdentityKey, d.Identity)
				return next(c)
			default:
				return d.Err
			}
		}
	}
}

// RequireIdentity rejects requests the gate did not admit.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFrom(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(*domain.Identity)
	if ok && id != nil {
		return id, true
	}
	return domain.IdentityFrom(c.Request().Context())
}
