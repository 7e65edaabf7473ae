// Package token issues and verifies the signed, typed bearer tokens used by
// the auth subsystem. Nothing here performs I/O.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

const DefaultIssuer = "todoapp"

var defaultTTLs = map[domain.TokenKind]time.Duration{
	domain.TokenAccess:       15 * time.Minute,
	domain.TokenRefresh:      7 * 24 * time.Hour,
	domain.TokenVerification: 24 * time.Hour,
	domain.TokenUnlock:       24 * time.Hour,
	domain.TokenEnable:       24 * time.Hour,
}

// DefaultTTL returns the built-in lifetime for kind.
func DefaultTTL(kind domain.TokenKind) time.Duration {
	return defaultTTLs[kind]
}

// PolicyConfig is the injected material a Policy is built from.
type PolicyConfig struct {
	Issuer    string
	Algorithm string // HS256, HS384 or HS512
	Secret    []byte
	// TTLs overrides per kind; missing or zero entries keep the default.
	TTLs map[domain.TokenKind]time.Duration
}

// Policy is the static token configuration. It is never mutated after
// NewPolicy returns and is safe for concurrent use.
type Policy struct {
	issuer string
	method *jwt.SigningMethodHMAC
	secret []byte
	ttls   map[domain.TokenKind]time.Duration
}

// NewPolicy validates cfg and freezes it into a Policy.
func NewPolicy(cfg PolicyConfig) (*Policy, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token policy: signing secret is required")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token policy: unsupported signing algorithm %q", alg)
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	ttls := make(map[domain.TokenKind]time.Duration, len(defaultTTLs))
	for kind, ttl := range defaultTTLs {
		ttls[kind] = ttl
	}
	for kind, ttl := range cfg.TTLs {
		if !kind.Valid() {
			return nil, fmt.Errorf("token policy: unknown token kind %q", kind)
		}
		if ttl < 0 {
			return nil, fmt.Errorf("token policy: negative ttl for %s", kind)
		}
		if ttl > 0 {
			ttls[kind] = ttl
		}
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Policy{issuer: issuer, method: method, secret: secret, ttls: ttls}, nil
}

// TTL returns the lifetime of tokens of the given kind, zero for unknown kinds.
func (p *Policy) TTL(kind domain.TokenKind) time.Duration {
	return p.ttls[kind]
}

// ExpiresAt is issuedAt + TTL(kind).
func (p *Policy) ExpiresAt(issuedAt time.Time, kind domain.TokenKind) time.Time {
	return issuedAt.Add(p.TTL(kind))
}

func (p *Policy) Issuer() string { return p.issuer }

func (p *Policy) Method() jwt.SigningMethod { return p.method }
