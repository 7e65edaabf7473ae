package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/ports"
	"github.com/naiarievilo/todoapp/internal/pkg/metrics"
)

// AccountStateMachine is the only writer of an account's lifecycle flags and
// login counters. Every transition is a single store call, and transitions
// into the state the account is already in perform no write at all.
type AccountStateMachine struct {
	repo  ports.AccountRepository
	clock Clock
	log   zerolog.Logger
}

func NewAccountStateMachine(repo ports.AccountRepository, clock Clock, log zerolog.Logger) *AccountStateMachine {
	return &AccountStateMachine{repo: repo, clock: clock, log: log}
}

// Verify marks the account's email as confirmed.
func (m *AccountStateMachine) Verify(ctx context.Context, a *domain.Account) error {
	if a.Verified {
		return nil
	}
	if err := m.apply(ctx, a, "verify", domain.AccountStateChange{Verified: boolPtr(true)}); err != nil {
		return err
	}
	a.Verified = true
	return nil
}

func (m *AccountStateMachine) Lock(ctx context.Context, a *domain.Account) error {
	return m.setLocked(ctx, a, true)
}

func (m *AccountStateMachine) Unlock(ctx context.Context, a *domain.Account) error {
	return m.setLocked(ctx, a, false)
}

func (m *AccountStateMachine) Disable(ctx context.Context, a *domain.Account) error {
	return m.setEnabled(ctx, a, false)
}

func (m *AccountStateMachine) Enable(ctx context.Context, a *domain.Account) error {
	return m.setEnabled(ctx, a, true)
}

// RecordFailedLogin bumps the failed-login counter. Whether the new count
// should lock the account is decided by the caller.
func (m *AccountStateMachine) RecordFailedLogin(ctx context.Context, a *domain.Account) error {
	at := m.clock.now().UTC()
	count, err := m.repo.RecordFailedLogin(ctx, a.ID, at)
	if err != nil {
		return fmt.Errorf("record failed login for %s: %w", a.ID, err)
	}
	a.FailedLoginAttempts = count
	a.LastFailedLoginAt = &at

	metrics.AccountTransitionsTotal.WithLabelValues("failed_login").Inc()
	m.log.Info().Str("account_id", a.ID).Int("failed_login_attempts", count).Msg("failed login recorded")
	return nil
}

// ResetLoginAttempts zeroes the failed-login counter.
func (m *AccountStateMachine) ResetLoginAttempts(ctx context.Context, a *domain.Account) error {
	if a.FailedLoginAttempts == 0 {
		return nil
	}
	if err := m.apply(ctx, a, "reset_login_attempts", domain.AccountStateChange{FailedLoginAttempts: intPtr(0)}); err != nil {
		return err
	}
	a.FailedLoginAttempts = 0
	return nil
}

func (m *AccountStateMachine) setLocked(ctx context.Context, a *domain.Account, locked bool) error {
	if a.Locked == locked {
		return nil
	}
	transition := "unlock"
	if locked {
		transition = "lock"
	}
	if err := m.apply(ctx, a, transition, domain.AccountStateChange{Locked: boolPtr(locked)}); err != nil {
		return err
	}
	a.Locked = locked
	return nil
}

func (m *AccountStateMachine) setEnabled(ctx context.Context, a *domain.Account, enabled bool) error {
	if a.Enabled == enabled {
		return nil
	}
	transition := "disable"
	if enabled {
		transition = "enable"
	}
	if err := m.apply(ctx, a, transition, domain.AccountStateChange{Enabled: boolPtr(enabled)}); err != nil {
		return err
	}
	a.Enabled = enabled
	return nil
}

func (m *AccountStateMachine) apply(ctx context.Context, a *domain.Account, transition string, change domain.AccountStateChange) error {
	if err := m.repo.ApplyStateChange(ctx, a.ID, change); err != nil {
		return fmt.Errorf("%s account %s: %w", transition, a.ID, err)
	}
	metrics.AccountTransitionsTotal.WithLabelValues(transition).Inc()
	m.log.Info().Str("account_id", a.ID).Str("transition", transition).Msg("account state changed")
	return nil
}
