package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionRoles = "roles"

// RoleRepository resolves role identifiers to their permissions. Roles are
// owned by the role service; this side only reads them.
type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionRoles)}
}

type roleDoc struct {
	Name        string   `bson:"_id"`
	Permissions []string `bson:"permissions"`
}

// PermissionsFor returns the union of permissions of the given roles.
// Unknown roles contribute nothing.
func (r *RoleRepository) PermissionsFor(ctx context.Context, roles []string) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": roles}},
		options.Find().SetProjection(bson.M{"permissions": 1}))
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	defer cur.Close(ctx)

	var docs []roleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	var perms []string
	for _, d := range docs {
		perms = append(perms, d.Permissions...)
	}
	return perms, nil
}
