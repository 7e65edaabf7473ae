package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// Claims is the payload carried by every token.
type Claims struct {
	Type domain.TokenKind `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// AccountID is the subject the token was issued for.
func (c *Claims) AccountID() string { return c.Subject }

// Option customises a Codec.
type Option func(*Codec)

// WithClock injects the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// Codec signs and verifies tokens under a Policy.
type Codec struct {
	policy *Policy
	now    func() time.Time
	parser *jwt.Parser
}

func NewCodec(policy *Policy, opts ...Option) *Codec {
	c := &Codec{
		policy: policy,
		now:    time.Now,
		// Claims are checked by hand so failures map onto a fixed precedence.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{policy.Method().Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Codec) Policy() *Policy { return c.policy }

// Issue mints a token of the given kind for accountID.
func (c *Codec) Issue(accountID string, kind domain.TokenKind) (string, error) {
	if accountID == "" {
		return "", errors.New("issue token: empty account id")
	}
	if !kind.Valid() {
		return "", fmt.Errorf("issue token: unknown kind %q", kind)
	}

	now := c.now().UTC().Truncate(time.Second)
	claims := &Claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID,
			Issuer:    c.policy.Issuer(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(c.policy.ExpiresAt(now, kind)),
		},
	}

	signed, err := jwt.NewWithClaims(c.policy.Method(), claims).SignedString(c.policy.secret)
	if err != nil {
		return "", fmt.Errorf("issue %s token: %w", kind, err)
	}
	return signed, nil
}

// IssuePair mints the access and refresh tokens handed out on register and login.
func (c *Codec) IssuePair(accountID string) (*domain.TokenPair, error) {
	access, err := c.Issue(accountID, domain.TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := c.Issue(accountID, domain.TokenRefresh)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{Access: access, Refresh: refresh}, nil
}

// Verify checks tokenString and returns its claims when it is a live token of
// the expected kind. Failures are reported in this order: signature or issuer
// (ErrSignatureInvalid), absent claims (ErrClaimsMissing), wrong kind
// (ErrTypeMismatch), expiry (ErrTokenExpired). ErrTokenExpired therefore
// implies every other check passed.
func (c *Codec) Verify(tokenString string, expected domain.TokenKind) (*Claims, error) {
	claims := &Claims{}
	if _, err := c.parser.ParseWithClaims(tokenString, claims, c.keyFunc); err != nil {
		return nil, fmt.Errorf("verify %s token: %w: %v", expected, domain.ErrSignatureInvalid, err)
	}

	if claims.Issuer != c.policy.Issuer() {
		return nil, fmt.Errorf("verify %s token: %w: unexpected issuer %q", expected, domain.ErrSignatureInvalid, claims.Issuer)
	}

	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil || claims.Type == "" {
		return nil, fmt.Errorf("verify %s token: %w", expected, domain.ErrClaimsMissing)
	}

	if claims.Type != expected {
		return nil, fmt.Errorf("verify %s token: %w: got %q", expected, domain.ErrTypeMismatch, claims.Type)
	}

	if !c.now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("verify %s token: %w", expected, domain.ErrTokenExpired)
	}

	return claims, nil
}

// Remaining returns how long claims stay valid, never negative.
func (c *Codec) Remaining(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	if d := claims.ExpiresAt.Sub(c.now()); d > 0 {
		return d
	}
	return 0
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.policy.secret, nil
}
