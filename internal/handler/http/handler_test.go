package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"simple-shop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/product", nil)
	r.Host = "shop.local:4000"
	assert.Equal(t, "http://shop.local:4000", BaseURL(r, "", false))
	assert.Equal(t, "https://cdn.shop.io", BaseURL(r, "https://cdn.shop.io/", false))

	r.Header.Set("X-Forwarded-Proto", "https, http")
	r.Header.Set("X-Forwarded-Host", "evil.test")
	assert.Equal(t, "http://shop.local:4000", BaseURL(r, "", false))
	assert.Equal(t, "https://evil.test", BaseURL(r, "", true))
	assert.Equal(t, "https://cdn.shop.io", BaseURL(r, "https://cdn.shop.io", true))

	r.Header.Set("X-Forwarded-Proto", "javascript")
	r.Header.Del("X-Forwarded-Host")
	assert.Equal(t, "http://shop.local:4000", BaseURL(r, "", true))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://example.com", BaseURL(r, "", false))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		detail  string
	}{
		{"validation", model.ValidationError("Please fill all fields"), http.StatusBadRequest, "Please fill all fields", ""},
		{"auth", model.AuthError("Invalid credentials"), http.StatusUnauthorized, "Invalid credentials", ""},
		{"not found", model.NotFoundError("Category not found"), http.StatusNotFound, "Category not found", ""},
		{"upload detail", model.UploadError("Failed to store image", errors.New("disk full")), http.StatusBadRequest, "Failed to store image", "disk full"},
		{"internal hides cause", model.InternalError(errors.New("mongo: connection refused")), http.StatusInternalServerError, "Internal server error", ""},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "Internal server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(context.Background(), rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body messageResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.detail, body.Error)
			assert.NotContains(t, rec.Body.String(), "mongo")
		})
	}
}

func TestRoot(t *testing.T) {
	rec := httptest.NewRecorder()
	Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "It works well", rec.Body.String())
}
