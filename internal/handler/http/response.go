package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"simple-shop/internal/logger"
	"simple-shop/internal/model"
)

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError converts err into its status code and a {message} body.
// Internal causes are logged, never echoed.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	resp := messageResponse{Message: "Internal server error"}

	var e *model.Error
	if errors.As(err, &e) {
		resp.Message = e.Message
		if kind == model.KindUpload && e.Err != nil {
			resp.Error = e.Err.Error()
		}
	}

	if kind == model.KindInternal {
		logger.Error(ctx, "Request failed", slog.String("error", err.Error()))
	} else {
		logger.Debug(ctx, "Request rejected",
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, kind.StatusCode(), resp)
}

// decodeJSON reads a JSON object body into v. Malformed bodies are a
// validation failure.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return model.ValidationError("Please fill all fields")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewError(model.KindValidation, "Invalid request payload", err)
	}
	return nil
}

// BaseURL returns the origin used to build absolute image URLs: the
// configured public URL, or one derived from the request. Forwarded headers
// are honoured only when trustForwarded is set; deployments behind a proxy
// that does not rewrite them should configure PUBLIC_BASE_URL.
func BaseURL(r *http.Request, configured string, trustForwarded bool) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if trustForwarded {
		if proto := firstForwarded(r.Header.Get("X-Forwarded-Proto")); proto == "http" || proto == "https" {
			scheme = proto
		}
		if fh := firstForwarded(r.Header.Get("X-Forwarded-Host")); fh != "" {
			host = fh
		}
	}
	return scheme + "://" + host
}

func firstForwarded(v string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(v, ",")[0]))
}
