package ports

import (
	"context"
	"time"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// AccountRepository is the external user store. Every method reports a
// missing account as domain.ErrAccountNotFound, including accounts removed
// by the unverified-account sweeper between two calls.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// ApplyStateChange overwrites the non-nil lifecycle fields in a single
	// atomic update.
	ApplyStateChange(ctx context.Context, id string, change domain.AccountStateChange) error
	// RecordFailedLogin atomically increments the failed-login counter, stamps
	// the failure time and returns the new counter value.
	RecordFailedLogin(ctx context.Context, id string, at time.Time) (int, error)
	// DeleteUnverified removes the account only if it is still unverified and
	// reports whether it did. A missing or verified account is not an error.
	DeleteUnverified(ctx context.Context, id string) (bool, error)
}
