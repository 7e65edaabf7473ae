package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// minGuardTTL keeps a marker alive for tokens consumed in their last instant.
const minGuardTTL = time.Second

// TokenGuard records consumed single-use token ids in Redis.
// Key format: used-token:<jti>
type TokenGuard struct {
	client *redis.Client
}

func NewTokenGuard(client *redis.Client) *TokenGuard {
	return &TokenGuard{client: client}
}

// Consume marks tokenID as used until ttl elapses and reports whether this
// call was the first to do so. SET NX makes the check and the mark one
// atomic step.
func (g *TokenGuard) Consume(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if tokenID == "" {
		return false, errors.New("consume token: empty token id")
	}
	if ttl < minGuardTTL {
		ttl = minGuardTTL
	}

	first, err := g.client.SetNX(ctx, g.key(tokenID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("consume token: %w", err)
	}
	return first, nil
}

func (g *TokenGuard) key(tokenID string) string {
	return "used-token:" + tokenID
}
