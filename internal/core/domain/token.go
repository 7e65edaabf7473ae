package domain

import "fmt"

// TokenKind identifies what a signed token may be used for. The set is closed.
type TokenKind string

const (
	TokenAccess       TokenKind = "access"
	TokenRefresh      TokenKind = "refresh"
	TokenVerification TokenKind = "verification"
	TokenUnlock       TokenKind = "unlock"
	TokenEnable       TokenKind = "enable"
)

// TokenKinds lists every kind in a stable order.
var TokenKinds = []TokenKind{TokenAccess, TokenRefresh, TokenVerification, TokenUnlock, TokenEnable}

// Valid reports whether k is one of the known kinds.
func (k TokenKind) Valid() bool {
	for _, known := range TokenKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseTokenKind converts a claim value into a TokenKind.
func ParseTokenKind(s string) (TokenKind, error) {
	k := TokenKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown token kind %q", s)
	}
	return k, nil
}

// IsAction reports whether the kind is a single-use account action token.
func (k TokenKind) IsAction() bool {
	return k == TokenVerification || k == TokenUnlock || k == TokenEnable
}

// TokenPair is what register and login hand back to the client.
type TokenPair struct {
	Access  string
	Refresh string
}
