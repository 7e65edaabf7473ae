package ports

import (
	"context"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// AdminAction is an operator-driven lifecycle transition.
type AdminAction string

const (
	AdminLock    AdminAction = "lock"
	AdminUnlock  AdminAction = "unlock"
	AdminDisable AdminAction = "disable"
	AdminEnable  AdminAction = "enable"
)

// AuthService is the use-case surface consumed by the HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.TokenPair, *domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, *domain.Account, error)
	Reauthenticate(ctx context.Context, accessToken, refreshToken string) (string, error)
	ConfirmAction(ctx context.Context, accountID string, kind domain.TokenKind, token string) (*domain.Account, error)
	RequestAction(ctx context.Context, email string, kind domain.TokenKind) error
	ApplyAdminAction(ctx context.Context, accountID string, action AdminAction) (*domain.Account, error)
}
