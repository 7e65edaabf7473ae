package ports

import (
	"context"
	"time"
)

// TokenGuard records consumed single-use tokens.
type TokenGuard interface {
	// Consume marks the token id as used for ttl and reports whether this was
	// the first use.
	Consume(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}
