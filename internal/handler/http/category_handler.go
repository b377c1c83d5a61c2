package http

import (
	"net/http"

	"simple-shop/internal/service"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type CategoryHandler struct {
	service *service.CategoryService
}

var HttpCategoryHandlerTracer = otel.Tracer("HttpCategoryHandler")

func NewCategoryHandler(service *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		service: service,
	}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCategoryHandlerTracer.Start(r.Context(), "HttpCategoryHandler.Create")
	defer span.End()

	var in service.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(ctx, w, err)
		return
	}

	category, err := h.service.Create(ctx, in)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCategoryHandlerTracer.Start(r.Context(), "HttpCategoryHandler.List")
	defer span.End()

	categories, err := h.service.List(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCategoryHandlerTracer.Start(r.Context(), "HttpCategoryHandler.Update")
	defer span.End()

	id := r.PathValue("id")
	span.SetAttributes(attribute.String("category.id", id))

	var in service.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(ctx, w, err)
		return
	}

	category, err := h.service.Update(ctx, id, in)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpCategoryHandlerTracer.Start(r.Context(), "HttpCategoryHandler.Delete")
	defer span.End()

	id := r.PathValue("id")
	span.SetAttributes(attribute.String("category.id", id))

	if err := h.service.Delete(ctx, id); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted successfully")
}
