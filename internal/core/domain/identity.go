package domain

import "context"

// Identity is an admitted account together with its authority set
// (role identifiers plus the permissions granted to those roles).
type Identity struct {
	Account     *Account
	Authorities []string
}

// HasAuthority reports whether the identity was granted any of the given authorities.
func (i *Identity) HasAuthority(authorities ...string) bool {
	if i == nil {
		return false
	}
	for _, have := range i.Authorities {
		for _, want := range authorities {
			if have == want {
				return true
			}
		}
	}
	return false
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the identity attached by the request gate.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
