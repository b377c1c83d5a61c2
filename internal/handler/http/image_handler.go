package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"simple-shop/internal/logger"
	"simple-shop/internal/storage"

	"go.opentelemetry.io/otel"
)

// ImageHandler serves stored product images read-only.
type ImageHandler struct {
	images storage.ImageStore
}

var HttpImageHandlerTracer = otel.Tracer("HttpImageHandler")

func NewImageHandler(images storage.ImageStore) *ImageHandler {
	return &ImageHandler{images: images}
}

func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpImageHandlerTracer.Start(r.Context(), "HttpImageHandler.Serve")
	defer span.End()

	obj, err := h.images.Open(ctx, r.PathValue("file"))
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logger.Error(ctx, "Failed to open image", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.Copy(w, obj.Body)
}
