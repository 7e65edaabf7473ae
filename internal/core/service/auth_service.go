package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/ports"
	"github.com/naiarievilo/todoapp/internal/core/token"
	"github.com/naiarievilo/todoapp/internal/pkg/metrics"
)

// AuthConfig holds the account policy knobs of AuthService.
type AuthConfig struct {
	DefaultRole      string
	LockoutThreshold int
	Clock            Clock
}

// AuthService implements registration, login, renewal and the account
// action flows on top of the auth components.
type AuthService struct {
	accounts      ports.AccountRepository
	hasher        ports.PasswordHasher
	codec         *token.Codec
	guard         ports.TokenGuard
	state         *AccountStateMachine
	authenticator *Authenticator
	renewal       *RenewalProtocol
	mailer        *ActionMailer
	defaultRole   string
	log           zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	hasher ports.PasswordHasher,
	codec *token.Codec,
	notifier ports.Notifier,
	guard ports.TokenGuard,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = domain.RoleUser
	}

	state := NewAccountStateMachine(accounts, cfg.Clock, log)
	mailer := NewActionMailer(codec, notifier)
	lockout := NewLockoutPolicy(state, mailer, cfg.LockoutThreshold, log)

	return &AuthService{
		accounts:      accounts,
		hasher:        hasher,
		codec:         codec,
		guard:         guard,
		state:         state,
		authenticator: NewAuthenticator(accounts, hasher, lockout, log),
		renewal:       NewRenewalProtocol(codec, log),
		mailer:        mailer,
		defaultRole:   cfg.DefaultRole,
		log:           log,
	}
}

// StateMachine exposes the account state machine used by the service.
func (s *AuthService) StateMachine() *AccountStateMachine { return s.state }

// Register creates an unverified account, mails a verification link and
// returns a fresh token pair.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.TokenPair, *domain.Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("register: %w", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	created, err := s.accounts.Create(ctx, &domain.Account{
		Email:        email,
		PasswordHash: hash,
		Roles:        []string{s.defaultRole},
		Verified:     false,
		Enabled:      true,
		Locked:       false,
		CreatedAt:    s.state.clock.now().UTC(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	pair, err := s.codec.IssuePair(created.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	if err := s.mailer.Send(ctx, created, domain.TokenVerification); err != nil {
		s.log.Warn().Err(err).Str("account_id", created.ID).Msg("failed to send verification link")
	}

	s.log.Info().Str("account_id", created.ID).Msg("account registered")
	return pair, created, nil
}

// Login checks credentials and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, *domain.Account, error) {
	account, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrBadCredentials) {
			result = "bad_credentials"
		}
		metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
		return nil, nil, err
	}

	// A locked account answers like a wrong password so the lock cannot be
	// used to confirm a guess.
	if account.Locked {
		metrics.LoginAttemptsTotal.WithLabelValues("locked").Inc()
		s.log.Info().Str("account_id", account.ID).Msg("login refused for locked account")
		return nil, nil, fmt.Errorf("login: %w", domain.ErrBadCredentials)
	}

	pair, err := s.codec.IssuePair(account.ID)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	return pair, account, nil
}

// Reauthenticate runs the renewal protocol.
func (s *AuthService) Reauthenticate(_ context.Context, accessToken, refreshToken string) (string, error) {
	return s.renewal.Renew(accessToken, refreshToken)
}

// ConfirmAction consumes a single-use verification, unlock or enable token
// addressed to accountID.
func (s *AuthService) ConfirmAction(ctx context.Context, accountID string, kind domain.TokenKind, raw string) (*domain.Account, error) {
	if !kind.IsAction() {
		return nil, fmt.Errorf("confirm %s: %w", kind, domain.ErrInvalidInput)
	}

	claims, err := verifyToken(s.codec, raw, kind)
	if err != nil {
		return nil, fmt.Errorf("confirm %s: %w", kind, err)
	}
	if claims.AccountID() != accountID {
		return nil, fmt.Errorf("confirm %s: %w: token issued for another account", kind, domain.ErrSignatureInvalid)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("confirm %s: %w: token id", kind, domain.ErrClaimsMissing)
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("confirm %s: %w", kind, err)
	}

	// Spent only once the account is loaded, so a store outage leaves the
	// link usable.
	if err := s.consume(ctx, claims); err != nil {
		return nil, fmt.Errorf("confirm %s: %w", kind, err)
	}

	switch kind {
	case domain.TokenVerification:
		err = s.state.Verify(ctx, account)
	case domain.TokenUnlock:
		if err = s.state.Unlock(ctx, account); err == nil {
			err = s.state.ResetLoginAttempts(ctx, account)
		}
	case domain.TokenEnable:
		err = s.state.Enable(ctx, account)
	}
	if err != nil {
		return nil, fmt.Errorf("confirm %s: %w", kind, err)
	}
	return account, nil
}

// consume enforces single use of an action token. A guard outage is logged
// and tolerated: every action transition is idempotent.
func (s *AuthService) consume(ctx context.Context, claims *token.Claims) error {
	if s.guard == nil {
		return nil
	}
	first, err := s.guard.Consume(ctx, claims.ID, s.codec.Remaining(claims))
	if err != nil {
		s.log.Warn().Err(err).Str("token_id", claims.ID).Msg("token guard unavailable, accepting token")
		return nil
	}
	if !first {
		metrics.ActionTokenReplaysTotal.Inc()
		return domain.ErrTokenAlreadyUsed
	}
	return nil
}

// RequestAction re-sends an action link when the account is in the state the
// link would fix. Unknown emails and accounts that need nothing are ignored
// so callers cannot probe for accounts.
func (s *AuthService) RequestAction(ctx context.Context, email string, kind domain.TokenKind) error {
	if !kind.IsAction() {
		return fmt.Errorf("request %s: %w", kind, domain.ErrInvalidInput)
	}

	account, err := s.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil
		}
		return fmt.Errorf("request %s: %w", kind, err)
	}

	needed := (kind == domain.TokenVerification && !account.Verified) ||
		(kind == domain.TokenUnlock && account.Locked) ||
		(kind == domain.TokenEnable && !account.Enabled)
	if !needed {
		s.log.Debug().Str("account_id", account.ID).Str("kind", string(kind)).Msg("action link not needed")
		return nil
	}

	if err := s.mailer.Send(ctx, account, kind); err != nil {
		return fmt.Errorf("request %s: %w", kind, err)
	}
	return nil
}

// ApplyAdminAction runs an operator-initiated lifecycle transition.
func (s *AuthService) ApplyAdminAction(ctx context.Context, accountID string, action ports.AdminAction) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("admin %s: %w", action, err)
	}

	switch action {
	case ports.AdminLock:
		err = s.state.Lock(ctx, account)
	case ports.AdminUnlock:
		if err = s.state.Unlock(ctx, account); err == nil {
			err = s.state.ResetLoginAttempts(ctx, account)
		}
	case ports.AdminDisable:
		err = s.state.Disable(ctx, account)
	case ports.AdminEnable:
		err = s.state.Enable(ctx, account)
	default:
		return nil, fmt.Errorf("admin %s: %w", action, domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("admin %s: %w", action, err)
	}

	s.log.Info().Str("account_id", accountID).Str("action", string(action)).Msg("admin action applied")
	return account, nil
}
