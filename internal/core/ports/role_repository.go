package ports

import "context"

// RoleRepository resolves the permissions granted to a set of roles.
type RoleRepository interface {
	PermissionsFor(ctx context.Context, roles []string) ([]string, error)
}
