package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// LockoutPolicy locks an account once its failed-login counter reaches
// threshold and mails an unlock link. A threshold of zero only counts.
type LockoutPolicy struct {
	state     *AccountStateMachine
	mailer    *ActionMailer
	threshold int
	log       zerolog.Logger
}

func NewLockoutPolicy(state *AccountStateMachine, mailer *ActionMailer, threshold int, log zerolog.Logger) *LockoutPolicy {
	if threshold < 0 {
		threshold = 0
	}
	return &LockoutPolicy{state: state, mailer: mailer, threshold: threshold, log: log}
}

func (p *LockoutPolicy) LoginFailed(ctx context.Context, a *domain.Account) error {
	if err := p.state.RecordFailedLogin(ctx, a); err != nil {
		return err
	}
	if p.threshold == 0 || a.Locked || a.FailedLoginAttempts < p.threshold {
		return nil
	}

	if err := p.state.Lock(ctx, a); err != nil {
		return err
	}
	p.log.Warn().
		Str("account_id", a.ID).
		Int("failed_login_attempts", a.FailedLoginAttempts).
		Msg("account locked after repeated failed logins")

	if p.mailer != nil {
		if err := p.mailer.Send(ctx, a, domain.TokenUnlock); err != nil {
			p.log.Warn().Err(err).Str("account_id", a.ID).Msg("failed to send unlock link")
		}
	}
	return nil
}

// LoginSucceeded resets the counter. A locked account keeps its count until
// it is unlocked.
func (p *LockoutPolicy) LoginSucceeded(ctx context.Context, a *domain.Account) error {
	if a.Locked {
		return nil
	}
	return p.state.ResetLoginAttempts(ctx, a)
}
