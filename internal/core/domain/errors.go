package domain

import "errors"

// Token-level failures.
var (
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrClaimsMissing    = errors.New("token claims missing")
	ErrTokenExpired     = errors.New("token expired")
	ErrTypeMismatch     = errors.New("token type mismatch")
	ErrTokenAlreadyUsed = errors.New("token already used")
)

// Account-level failures.
var (
	ErrAccountNotFound          = errors.New("account not found")
	ErrBadCredentials           = errors.New("bad credentials")
	ErrAccountLocked            = errors.New("account is locked")
	ErrAccountDisabled          = errors.New("account is disabled")
	ErrAccountUnverifiedExpired = errors.New("account verification period expired")
	ErrAccountExists            = errors.New("account already exists")
	ErrForbidden                = errors.New("access forbidden")
	ErrInvalidInput             = errors.New("invalid input")
)

// ErrAccessTokenCreationFailed is returned by renewal while the presented
// access token is still usable.
var ErrAccessTokenCreationFailed = errors.New("ACCESS_TOKEN_CREATION_FAILED")

// IsTokenError reports whether err is one of the token-level failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrClaimsMissing) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrTokenAlreadyUsed)
}
