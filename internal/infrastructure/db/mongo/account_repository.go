package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

const collectionAccounts = "accounts"

// AccountRepository is the MongoDB implementation of ports.AccountRepository.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type accountDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Email               string             `bson:"email"`
	PasswordHash        string             `bson:"password_hash"`
	Roles               []string           `bson:"roles"`
	Verified            bool               `bson:"verified"`
	Enabled             bool               `bson:"enabled"`
	Locked              bool               `bson:"locked"`
	FailedLoginAttempts int                `bson:"failed_login_attempts"`
	LastFailedLoginAt   *time.Time         `bson:"last_failed_login_at,omitempty"`
	CreatedAt           time.Time          `bson:"created_at"`
}

func toAccountDoc(a *domain.Account) accountDoc {
	return accountDoc{
		Email:               a.Email,
		PasswordHash:        a.PasswordHash,
		Roles:               a.Roles,
		Verified:            a.Verified,
		Enabled:             a.Enabled,
		Locked:              a.Locked,
		FailedLoginAttempts: a.FailedLoginAttempts,
		LastFailedLoginAt:   a.LastFailedLoginAt,
		CreatedAt:           a.CreatedAt.UTC(),
	}
}

func (d accountDoc) toDomain() *domain.Account {
	a := &domain.Account{
		ID:                  d.ID.Hex(),
		Email:               d.Email,
		PasswordHash:        d.PasswordHash,
		Roles:               d.Roles,
		Verified:            d.Verified,
		Enabled:             d.Enabled,
		Locked:              d.Locked,
		FailedLoginAttempts: d.FailedLoginAttempts,
		CreatedAt:           d.CreatedAt.UTC(),
	}
	if d.LastFailedLoginAt != nil {
		at := d.LastFailedLoginAt.UTC()
		a.LastFailedLoginAt = &at
	}
	return a
}

// stateChangeSet builds the $set document for the non-nil fields of change.
func stateChangeSet(change domain.AccountStateChange) bson.M {
	set := bson.M{}
	if change.Verified != nil {
		set["verified"] = *change.Verified
	}
	if change.Enabled != nil {
		set["enabled"] = *change.Enabled
	}
	if change.Locked != nil {
		set["locked"] = *change.Locked
	}
	if change.FailedLoginAttempts != nil {
		set["failed_login_attempts"] = *change.FailedLoginAttempts
	}
	return set
}

// objectID parses an account id. Ids that are not valid ObjectIDs cannot
// exist in the collection and are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrAccountNotFound
	}
	return oid, nil
}

// Create inserts a new account and returns it with its generated id.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toAccountDoc(a)
	doc.ID = primitive.NewObjectID()

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// ApplyStateChange writes the non-nil fields of change in one update.
func (r *AccountRepository) ApplyStateChange(ctx context.Context, id string, change domain.AccountStateChange) error {
	if change.Empty() {
		return nil
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": stateChangeSet(change)})
	if err != nil {
		return fmt.Errorf("update account state: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// RecordFailedLogin increments the counter server-side and returns the
// post-increment value, so concurrent failures are never lost.
func (r *AccountRepository) RecordFailedLogin(ctx context.Context, id string, at time.Time) (int, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"failed_login_attempts": 1},
		"$set": bson.M{"last_failed_login_at": at.UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"failed_login_attempts": 1})

	var doc accountDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, fmt.Errorf("record failed login: %w", err)
	}
	return doc.FailedLoginAttempts, nil
}

// DeleteUnverified removes the account only while it is still unverified.
// It reports false when the account is already gone or was verified in the
// meantime.
func (r *AccountRepository) DeleteUnverified(ctx context.Context, id string) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, unverifiedFilter(oid))
	if err != nil {
		return false, fmt.Errorf("delete unverified account: %w", err)
	}
	return res.DeletedCount == 1, nil
}

func unverifiedFilter(oid primitive.ObjectID) bson.M {
	return bson.M{"_id": oid, "verified": false}
}

// EnsureIndexes creates the unique email index on the accounts collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "verified", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
