package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/ports"
	"github.com/naiarievilo/todoapp/internal/core/token"
	"github.com/naiarievilo/todoapp/internal/pkg/metrics"
)

// Outcome is the terminal state of a gate evaluation.
type Outcome int

const (
	// PassThrough: no bearer token was presented; the route decides.
	PassThrough Outcome = iota
	Admitted
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case PassThrough:
		return "pass_through"
	case Admitted:
		return "admitted"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision is the result of Gate.Evaluate. Identity is set only when
// admitted; Err only when rejected.
type Decision struct {
	Outcome  Outcome
	Identity *domain.Identity
	Err      error
}

// Gate is the request-time authentication check. It never retries.
type Gate struct {
	codec           *token.Codec
	accounts        ports.AccountRepository
	roles           ports.RoleRepository
	unverifiedGrace time.Duration
	clock           Clock
	log             zerolog.Logger
}

func NewGate(
	codec *token.Codec,
	accounts ports.AccountRepository,
	roles ports.RoleRepository,
	unverifiedGrace time.Duration,
	clock Clock,
	log zerolog.Logger,
) *Gate {
	return &Gate{
		codec:           codec,
		accounts:        accounts,
		roles:           roles,
		unverifiedGrace: unverifiedGrace,
		clock:           clock,
		log:             log,
	}
}

// Evaluate inspects the raw Authorization header value.
func (g *Gate) Evaluate(ctx context.Context, authorization string) (d Decision) {
	defer func() {
		reason := ""
		if d.Outcome == Rejected {
			reason = metrics.Reason(d.Err)
		}
		metrics.GateDecisionsTotal.WithLabelValues(d.Outcome.String(), reason).Inc()
	}()

	raw, ok := BearerToken(authorization)
	if !ok {
		return Decision{Outcome: PassThrough}
	}

	claims, err := verifyToken(g.codec, raw, domain.TokenAccess)
	if err != nil {
		return reject(err)
	}

	account, err := g.accounts.FindByID(ctx, claims.AccountID())
	if err != nil {
		return reject(fmt.Errorf("load account: %w", err))
	}

	if account.UnverifiedExpired(g.unverifiedGrace, g.clock.now()) {
		if account, err = g.expireUnverified(ctx, account); err != nil {
			return reject(err)
		}
	}

	if !account.Enabled {
		return reject(domain.ErrAccountDisabled)
	}
	if account.Locked {
		return reject(domain.ErrAccountLocked)
	}

	authorities, err := g.authorities(ctx, account)
	if err != nil {
		return reject(fmt.Errorf("resolve authorities: %w", err))
	}

	return Decision{
		Outcome:  Admitted,
		Identity: &domain.Identity{Account: account, Authorities: authorities},
	}
}

// expireUnverified deletes an account that outlived its verification grace
// period. When the conditional delete finds nothing the account was verified
// or removed concurrently, so it is reloaded instead.
func (g *Gate) expireUnverified(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	gone := fmt.Errorf("%w: %w", domain.ErrAccountNotFound, domain.ErrAccountUnverifiedExpired)

	deleted, err := g.accounts.DeleteUnverified(ctx, account.ID)
	if err != nil {
		g.log.Warn().Err(err).Str("account_id", account.ID).Msg("failed to delete expired unverified account")
		return nil, gone
	}
	if deleted {
		metrics.AccountTransitionsTotal.WithLabelValues("delete_unverified").Inc()
		g.log.Info().Str("account_id", account.ID).Msg("expired unverified account deleted")
		return nil, gone
	}

	current, err := g.accounts.FindByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, gone
		}
		return nil, fmt.Errorf("reload account: %w", err)
	}
	if current.UnverifiedExpired(g.unverifiedGrace, g.clock.now()) {
		return nil, gone
	}
	return current, nil
}

// authorities returns roles ∪ role permissions, deduplicated and sorted.
func (g *Gate) authorities(ctx context.Context, account *domain.Account) ([]string, error) {
	set := make(map[string]struct{}, len(account.Roles))
	for _, r := range account.Roles {
		set[r] = struct{}{}
	}
	if g.roles != nil && len(account.Roles) > 0 {
		perms, err := g.roles.PermissionsFor(ctx, account.Roles)
		if err != nil {
			return nil, err
		}
		for _, p := range perms {
			set[p] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out, nil
}

func reject(err error) Decision {
	return Decision{Outcome: Rejected, Err: err}
}

// BearerToken extracts the token from an Authorization header value. It
// reports false when the header is absent or uses another scheme.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
