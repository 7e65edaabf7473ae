package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/ports"
)

// LoginObserver is told about every credential check against a known account.
type LoginObserver interface {
	LoginFailed(ctx context.Context, a *domain.Account) error
	LoginSucceeded(ctx context.Context, a *domain.Account) error
}

// Authenticator turns an email and plaintext password into an account.
//
// It deliberately ignores the enabled and locked flags; those are enforced by
// the request gate.
type Authenticator struct {
	accounts  ports.AccountRepository
	hasher    ports.PasswordHasher
	observer  LoginObserver
	dummyHash string
	log       zerolog.Logger
}

func NewAuthenticator(accounts ports.AccountRepository, hasher ports.PasswordHasher, observer LoginObserver, log zerolog.Logger) *Authenticator {
	// Unknown emails are compared against this hash so they cost as much as
	// a wrong password.
	dummy, err := hasher.Hash("todoapp-unknown-account")
	if err != nil {
		log.Warn().Err(err).Msg("failed to prepare dummy password hash")
	}
	return &Authenticator{accounts: accounts, hasher: hasher, observer: observer, dummyHash: dummy, log: log}
}

// Authenticate returns domain.ErrBadCredentials for both an unknown email and
// a wrong password.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("authenticate: %w", domain.ErrBadCredentials)
	}

	account, err := a.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			_ = a.hasher.Compare(a.dummyHash, password)
			return nil, fmt.Errorf("authenticate: %w", domain.ErrBadCredentials)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if err := a.hasher.Compare(account.PasswordHash, password); err != nil {
		if !errors.Is(err, domain.ErrBadCredentials) {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		if a.observer != nil {
			if obsErr := a.observer.LoginFailed(ctx, account); obsErr != nil {
				a.log.Warn().Err(obsErr).Str("account_id", account.ID).Msg("failed to record failed login")
			}
		}
		return nil, fmt.Errorf("authenticate: %w", domain.ErrBadCredentials)
	}

	if a.observer != nil {
		if obsErr := a.observer.LoginSucceeded(ctx, account); obsErr != nil {
			a.log.Warn().Err(obsErr).Str("account_id", account.ID).Msg("failed to reset login attempts")
		}
	}
	return account, nil
}
