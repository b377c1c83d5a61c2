package repository

import (
	"context"

	"simple-shop/internal/logger"
	"simple-shop/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
)

type CategoryRepository struct {
	collection *mongo.Collection
}

var CategoryRepositoryTracer = otel.Tracer("CategoryRepository")

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection(CategoryCollection),
	}
}

func (r *CategoryRepository) Insert(ctx context.Context, category *model.Category) error {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.Insert")
	defer span.End()
	logger.Debug(ctx, "Repository")

	ts := now()
	category.ID = primitive.NewObjectID()
	category.CreatedAt, category.UpdatedAt = ts, ts
	_, err := r.collection.InsertOne(ctx, category)
	return translate(err)
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.FindAll")
	defer span.End()
	logger.Debug(ctx, "Repository")

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := make([]model.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Category, error) {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.FindByID")
	defer span.End()
	logger.Debug(ctx, "Repository")

	var category model.Category
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// Update changes name and description of an existing category and returns the
// updated record. It never creates one.
func (r *CategoryRepository) Update(ctx context.Context, id primitive.ObjectID, name, description string) (*model.Category, error) {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.Update")
	defer span.End()
	logger.Debug(ctx, "Repository")

	update := bson.M{
		"$set": bson.M{
			"name":        name,
			"description": description,
			"updatedAt":   now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(false)

	var category model.Category
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&category); err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, span := CategoryRepositoryTracer.Start(ctx, "CategoryRepository.Delete")
	defer span.End()
	logger.Debug(ctx, "Repository")

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
