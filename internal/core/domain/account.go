package domain

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Account models an identity protected by the auth subsystem.
//
// Roles holds role identifiers only; role membership is resolved against the
// role store, never through back-references.
type Account struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Roles               []string   `json:"roles"`
	Verified            bool       `json:"verified"`
	Enabled             bool       `json:"enabled"`
	Locked              bool       `json:"locked"`
	FailedLoginAttempts int        `json:"failed_login_attempts"`
	LastFailedLoginAt   *time.Time `json:"last_failed_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Usable reports whether the account may pass the request gate.
func (a *Account) Usable() bool {
	return a.Enabled && !a.Locked
}

// UnverifiedExpired reports whether an unverified account has outlived its
// grace period. A non-positive grace disables the check.
func (a *Account) UnverifiedExpired(grace time.Duration, now time.Time) bool {
	if a.Verified || grace <= 0 {
		return false
	}
	return now.After(a.CreatedAt.Add(grace))
}

// AccountStateChange carries the lifecycle fields to overwrite in one atomic
// store update. Nil fields are left untouched.
type AccountStateChange struct {
	Verified            *bool
	Enabled             *bool
	Locked              *bool
	FailedLoginAttempts *int
}

// Empty reports whether the change would not touch any field.
func (c AccountStateChange) Empty() bool {
	return c.Verified == nil && c.Enabled == nil && c.Locked == nil && c.FailedLoginAttempts == nil
}
