package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simple-shop/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

const (
	CustomerCollection = "customers"
	SellerCollection   = "sellers"
	CategoryCollection = "categories"
	ProductCollection  = "products"
)

// AccountCollection returns the collection holding accounts of the given actor type.
func AccountCollection(role model.Role) (string, error) {
	switch role {
	case model.RoleCustomer:
		return CustomerCollection, nil
	case model.RoleSeller:
		return SellerCollection, nil
	default:
		return "", fmt.Errorf("unknown account role %q", role)
	}
}

type indexSpec struct {
	collection string
	model      mongo.IndexModel
}

// registry lists every index the service relies on. The unique email indexes
// are what turns a lost check-then-insert race into ErrDuplicateKey.
var registry = []indexSpec{
	{
		collection: CustomerCollection,
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
	},
	{
		collection: SellerCollection,
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
	},
	{
		collection: ProductCollection,
		model: mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category"),
		},
	},
}

// EnsureIndexes creates the registered indexes. It is idempotent and meant to
// run once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, spec := range registry {
		if _, err := db.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model); err != nil {
			return fmt.Errorf("create index on %s: %w", spec.collection, err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	default:
		return err
	}
}

// now returns the current time at the precision MongoDB stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
