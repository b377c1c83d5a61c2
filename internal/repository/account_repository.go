package repository

import (
	"context"
	"errors"

	"simple-shop/internal/logger"
	"simple-shop/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// AccountRepository stores customers and sellers in separate collections with
// the same document shape.
type AccountRepository struct {
	collections map[model.Role]*mongo.Collection
}

var AccountRepositoryTracer = otel.Tracer("AccountRepository")

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		collections: map[model.Role]*mongo.Collection{
			model.RoleCustomer: db.Collection(CustomerCollection),
			model.RoleSeller:   db.Collection(SellerCollection),
		},
	}
}

func (r *AccountRepository) collection(role model.Role) (*mongo.Collection, error) {
	if _, err := AccountCollection(role); err != nil {
		return nil, err
	}
	return r.collections[role], nil
}

// FindByEmail returns nil, nil when no account of that type uses email.
func (r *AccountRepository) FindByEmail(ctx context.Context, role model.Role, email string) (*model.Account, error) {
	ctx, span := AccountRepositoryTracer.Start(ctx, "AccountRepository.FindByEmail")
	defer span.End()
	span.SetAttributes(attribute.String("account.role", string(role)))
	logger.Debug(ctx, "Repository")

	coll, err := r.collection(role)
	if err != nil {
		return nil, err
	}

	var account model.Account
	err = coll.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, role model.Role, id primitive.ObjectID) (*model.Account, error) {
	ctx, span := AccountRepositoryTracer.Start(ctx, "AccountRepository.FindByID")
	defer span.End()
	logger.Debug(ctx, "Repository")

	coll, err := r.collection(role)
	if err != nil {
		return nil, err
	}

	var account model.Account
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&account); err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// Create inserts account into the collection of its role. A taken email
// yields ErrDuplicateKey.
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	ctx, span := AccountRepositoryTracer.Start(ctx, "AccountRepository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("account.role", string(account.Role)))
	logger.Debug(ctx, "Repository")

	coll, err := r.collection(account.Role)
	if err != nil {
		return err
	}

	account.ID = primitive.NewObjectID()
	if _, err := coll.InsertOne(ctx, account); err != nil {
		account.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}
