package service

import (
	"context"
	"errors"
	"strings"

	"simple-shop/internal/events"
	"simple-shop/internal/logger"
	"simple-shop/internal/model"
	"simple-shop/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
)

const msgCategoryNotFound = "Category not found"

type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type CategoryService struct {
	store     CategoryStore
	publisher events.Publisher
}

var CategoryServiceTracer = otel.Tracer("CategoryService")

func NewCategoryService(store CategoryStore, publisher events.Publisher) *CategoryService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CategoryService{store: store, publisher: publisher}
}

func (in *CategoryInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return validateStruct(in)
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	ctx, span := CategoryServiceTracer.Start(ctx, "CategoryService.Create")
	defer span.End()
	logger.Info(ctx, "Service")

	if err := in.normalize(); err != nil {
		return nil, err
	}

	category := &model.Category{Name: in.Name, Description: in.Description}
	if err := s.store.Insert(ctx, category); err != nil {
		return nil, model.InternalError(err)
	}

	events.Emit(ctx, s.publisher, events.New(events.CategoryCreated, category.ID.Hex(), category))
	return category, nil
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	ctx, span := CategoryServiceTracer.Start(ctx, "CategoryService.List")
	defer span.End()
	logger.Info(ctx, "Service")

	categories, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, model.InternalError(err)
	}
	return categories, nil
}

// Update replaces name and description of an existing category. Unknown and
// malformed ids are reported as not found; nothing is created.
func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*model.Category, error) {
	ctx, span := CategoryServiceTracer.Start(ctx, "CategoryService.Update")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.NotFoundError(msgCategoryNotFound)
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	category, err := s.store.Update(ctx, objID, in.Name, in.Description)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NotFoundError(msgCategoryNotFound)
	}
	if err != nil {
		return nil, model.InternalError(err)
	}

	events.Emit(ctx, s.publisher, events.New(events.CategoryUpdated, category.ID.Hex(), category))
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	ctx, span := CategoryServiceTracer.Start(ctx, "CategoryService.Delete")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.NotFoundError(msgCategoryNotFound)
	}

	err = s.store.Delete(ctx, objID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NotFoundError(msgCategoryNotFound)
	}
	if err != nil {
		return model.InternalError(err)
	}

	events.Emit(ctx, s.publisher, events.New(events.CategoryDeleted, id, nil))
	return nil
}
