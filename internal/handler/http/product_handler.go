package http

import (
	"errors"
	"net/http"

	"simple-shop/internal/model"
	"simple-shop/internal/service"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// multipartOverhead allows room for the text fields next to the image.
const multipartOverhead = 1 << 20

type ProductHandler struct {
	service        *service.ProductService
	publicBaseURL  string
	trustForwarded bool
}

var HttpProductHandlerTracer = otel.Tracer("HttpProductHandler")

func NewProductHandler(service *service.ProductService, publicBaseURL string, trustForwarded bool) *ProductHandler {
	return &ProductHandler{
		service:        service,
		publicBaseURL:  publicBaseURL,
		trustForwarded: trustForwarded,
	}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Create")
	defer span.End()

	limit := h.service.MaxImageBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(ctx, w, model.UploadError("Image exceeds the maximum upload size", nil))
			return
		}
		writeError(ctx, w, model.NewError(model.KindValidation, "Invalid multipart form", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := service.ProductInput{
		ProductName: r.FormValue("product_name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Price:       r.FormValue("price"),
		Discount:    r.FormValue("discount"),
		Sale:        r.FormValue("sale"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		in.Image = &service.Upload{Filename: header.Filename, Size: header.Size, Body: file}
	case errors.Is(err, http.ErrMissingFile):
	default:
		writeError(ctx, w, model.UploadError("Failed to read image", err))
		return
	}

	product, err := h.service.Create(ctx, in)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	span.SetAttributes(attribute.String("product.id", product.ID.Hex()))
	writeJSON(w, http.StatusCreated, product.View(BaseURL(r, h.publicBaseURL, h.trustForwarded)))
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.List")
	defer span.End()

	products, err := h.service.List(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	base := BaseURL(r, h.publicBaseURL, h.trustForwarded)
	views := make([]model.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, p.View(base))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Get")
	defer span.End()

	product, err := h.service.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, product.View(BaseURL(r, h.publicBaseURL, h.trustForwarded)))
}
