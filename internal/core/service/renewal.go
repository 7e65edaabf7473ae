package service

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/token"
	"github.com/naiarievilo/todoapp/internal/pkg/metrics"
)

// RenewalProtocol exchanges an expired access token and a live refresh token
// for a fresh access token.
type RenewalProtocol struct {
	codec *token.Codec
	log   zerolog.Logger
}

func NewRenewalProtocol(codec *token.Codec, log zerolog.Logger) *RenewalProtocol {
	return &RenewalProtocol{codec: codec, log: log}
}

// Renew refuses with domain.ErrAccessTokenCreationFailed while the old access
// token is still valid, so renewals cannot be chained ahead of expiry. The
// new token is bound to the refresh token's subject; the old access token
// only proves staleness.
func (r *RenewalProtocol) Renew(oldAccess, refresh string) (newAccess string, err error) {
	defer func() {
		metrics.RenewalsTotal.WithLabelValues(metrics.Reason(err)).Inc()
	}()

	claims, err := verifyToken(r.codec, refresh, domain.TokenRefresh)
	if err != nil {
		return "", fmt.Errorf("renew: refresh token: %w", err)
	}

	_, err = verifyToken(r.codec, oldAccess, domain.TokenAccess)
	switch {
	case err == nil:
		return "", fmt.Errorf("renew: %w", domain.ErrAccessTokenCreationFailed)
	case errors.Is(err, domain.ErrTokenExpired):
		// stale but otherwise genuine: proceed
	default:
		return "", fmt.Errorf("renew: access token: %w", err)
	}

	newAccess, err = r.codec.Issue(claims.AccountID(), domain.TokenAccess)
	if err != nil {
		return "", fmt.Errorf("renew: %w", err)
	}

	r.log.Debug().Str("account_id", claims.AccountID()).Msg("access token renewed")
	return newAccess, nil
}

// verifyToken wraps Codec.Verify with the verification counter.
func verifyToken(codec *token.Codec, raw string, kind domain.TokenKind) (*token.Claims, error) {
	claims, err := codec.Verify(raw, kind)
	metrics.TokenVerificationsTotal.WithLabelValues(string(kind), metrics.Reason(err)).Inc()
	return claims, err
}
