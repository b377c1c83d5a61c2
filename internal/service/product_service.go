package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"simple-shop/internal/events"
	"simple-shop/internal/logger"
	"simple-shop/internal/model"
	"simple-shop/internal/repository"
	"simple-shop/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	msgImageRequired   = "Please upload an image"
	msgImageTooLarge   = "Image exceeds the maximum upload size"
	msgImageType       = "Only jpeg, png, gif and webp images are allowed"
	msgImageStore      = "Failed to store image"
	msgInvalidPrice    = "Price must be a non-negative number"
	msgInvalidDiscount = "Discount must be a non-negative number"
	msgInvalidSale     = "Sale must be true or false"
	msgProductNotFound = "Product not found"
)

// DefaultMaxImageBytes caps uploads when no limit is configured.
const DefaultMaxImageBytes int64 = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a received image file. Size is the declared length in bytes.
type Upload struct {
	Filename string
	Size     int64
	Body     io.ReadSeeker
}

// ProductInput holds the raw multipart fields of a new product.
type ProductInput struct {
	ProductName string `validate:"required"`
	Description string
	Category    string `validate:"required"`
	Price       string `validate:"required"`
	Discount    string
	Sale        string
	Image       *Upload
}

func (in *ProductInput) trim() {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Price = strings.TrimSpace(in.Price)
	in.Discount = strings.TrimSpace(in.Discount)
	in.Sale = strings.TrimSpace(in.Sale)
}

type ProductService struct {
	products      ProductStore
	categories    CategoryStore
	images        storage.ImageStore
	publisher     events.Publisher
	maxImageBytes int64
}

var ProductServiceTracer = otel.Tracer("ProductService")

func NewProductService(products ProductStore, categories CategoryStore, images storage.ImageStore, publisher events.Publisher, maxImageBytes int64) *ProductService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &ProductService{
		products:      products,
		categories:    categories,
		images:        images,
		publisher:     publisher,
		maxImageBytes: maxImageBytes,
	}
}

func (s *ProductService) MaxImageBytes() int64 {
	return s.maxImageBytes
}

// ParsePrice parses a decimal price without losing precision.
func ParsePrice(raw string) (primitive.Decimal128, error) {
	price, err := primitive.ParseDecimal128(raw)
	if err != nil {
		return primitive.Decimal128{}, model.ValidationError(msgInvalidPrice)
	}
	digits, _, err := price.BigInt()
	if err != nil || digits.Sign() < 0 || strings.HasPrefix(price.String(), "-") {
		return primitive.Decimal128{}, model.ValidationError(msgInvalidPrice)
	}
	return price, nil
}

func parseDiscount(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, model.ValidationError(msgInvalidDiscount)
	}
	return &v, nil
}

func parseSale(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, model.ValidationError(msgInvalidSale)
	}
	return v, nil
}

// sniffImage enforces the size and type policy and returns the stored file
// extension and content type.
func (s *ProductService) sniffImage(img *Upload) (string, string, error) {
	if img.Size > s.maxImageBytes {
		return "", "", model.UploadError(msgImageTooLarge, nil)
	}

	mt, err := mimetype.DetectReader(img.Body)
	if err != nil {
		return "", "", model.UploadError(msgImageType, err)
	}
	if _, err := img.Body.Seek(0, io.SeekStart); err != nil {
		return "", "", model.UploadError(msgImageStore, err)
	}

	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := imageExtensions[m.String()]; ok {
			return ext, m.String(), nil
		}
	}
	return "", "", model.UploadError(msgImageType, nil)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Create")
	defer span.End()
	logger.Info(ctx, "Service")

	in.trim()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Image == nil || in.Image.Body == nil {
		return nil, model.ValidationError(msgImageRequired)
	}

	ext, contentType, err := s.sniffImage(in.Image)
	if err != nil {
		return nil, err
	}

	price, err := ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	discount, err := parseDiscount(in.Discount)
	if err != nil {
		return nil, err
	}
	sale, err := parseSale(in.Sale)
	if err != nil {
		return nil, err
	}

	categoryID, err := primitive.ObjectIDFromHex(in.Category)
	if err != nil {
		return nil, model.ValidationError(msgCategoryNotFound)
	}
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ValidationError(msgCategoryNotFound)
		}
		return nil, model.InternalError(err)
	}

	name := uuid.NewString() + ext
	span.SetAttributes(attribute.String("product.image", name))
	if err := s.images.Save(ctx, name, in.Image.Body, in.Image.Size, contentType); err != nil {
		return nil, model.UploadError(msgImageStore, err)
	}

	product := &model.Product{
		ProductName: in.ProductName,
		Description: in.Description,
		Category:    categoryID,
		Price:       price,
		Image:       model.ImagePathPrefix + name,
		Sale:        sale,
		Discount:    discount,
	}
	if err := s.products.Insert(ctx, product); err != nil {
		if derr := s.images.Delete(ctx, name); derr != nil {
			logger.Warn(ctx, "Failed to remove orphaned image",
				slog.String("image", name),
				slog.String("error", derr.Error()),
			)
		}
		return nil, model.InternalError(err)
	}

	events.Emit(ctx, s.publisher, events.New(events.ProductCreated, product.ID.Hex(), map[string]string{
		"id":       product.ID.Hex(),
		"category": categoryID.Hex(),
		"image":    product.Image,
	}))
	return product, nil
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.List")
	defer span.End()
	logger.Info(ctx, "Service")

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, model.InternalError(err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Get")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.NotFoundError(msgProductNotFound)
	}

	product, err := s.products.FindByID(ctx, objID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.NotFoundError(msgProductNotFound)
	}
	if err != nil {
		return nil, model.InternalError(err)
	}
	return product, nil
}
