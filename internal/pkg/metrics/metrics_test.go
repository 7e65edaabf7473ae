package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("verify: %w", domain.ErrSignatureInvalid), "signature_invalid"},
		{domain.ErrClaimsMissing, "claims_missing"},
		{domain.ErrTypeMismatch, "type_mismatch"},
		{domain.ErrTokenExpired, "expired"},
		{domain.ErrTokenAlreadyUsed, "already_used"},
		{domain.ErrAccessTokenCreationFailed, "access_token_still_valid"},
		{fmt.Errorf("%w: %w", domain.ErrAccountNotFound, domain.ErrAccountUnverifiedExpired), "account_not_found"},
		{domain.ErrBadCredentials, "bad_credentials"},
		{domain.ErrAccountLocked, "account_locked"},
		{domain.ErrAccountDisabled, "account_disabled"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range tests {
		if got := Reason(tc.err); got != tc.want {
			t.Fatalf("Reason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
