package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"simple-shop/internal/auth"
	handler "simple-shop/internal/handler/http"
	"simple-shop/internal/model"
	"simple-shop/internal/repository/memory"
	"simple-shop/internal/service"
	"simple-shop/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90wS\xde")

type upPinger struct{}

func (upPinger) Ping(context.Context, *readpref.ReadPref) error { return nil }

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenIssuer
}

func newTestServer(t *testing.T, authRequired bool) testServer {
	t.Helper()

	tokens, err := auth.NewTokenIssuer("router-secret", time.Hour)
	require.NoError(t, err)
	hasher := auth.NewHasher(4)

	accounts := memory.NewAccountRepository()
	categories := memory.NewCategoryRepository()
	products := memory.NewProductRepository()
	images, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	customers := service.NewAccountService(model.RoleCustomer, accounts, hasher, tokens, nil)
	sellers := service.NewAccountService(model.RoleSeller, accounts, hasher, tokens, nil)
	categorySvc := service.NewCategoryService(categories, nil)
	productSvc := service.NewProductService(products, categories, images, nil, 1<<20)

	h := New(Handlers{
		Auth:     handler.NewAuthHandler(customers, sellers),
		Category: handler.NewCategoryHandler(categorySvc),
		Product:  handler.NewProductHandler(productSvc, "", false),
		Image:    handler.NewImageHandler(images),
		Health:   handler.NewHealthHandler(service.NewHealthService(upPinger{})),
	}, Options{
		Tokens:         tokens,
		AuthRequired:   authRequired,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return testServer{handler: h, tokens: tokens}
}

func (s testServer) do(t *testing.T, method, target, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s testServer) json(t *testing.T, method, target, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return s.do(t, method, target, token, bytes.NewReader(b), "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s testServer) login(t *testing.T, path, email, password string) string {
	t.Helper()
	rec := s.json(t, http.MethodPost, path, "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]string](t, rec)["token"]
}

func (s testServer) sellerToken(t *testing.T) string {
	t.Helper()
	rec := s.json(t, http.MethodPost, "/api/seller/register", "", map[string]string{
		"name": "Sam", "email": "sam@shop.io", "password": "secret1",
		"phone_number": "555", "address": "Main St", "role": "seller",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return s.login(t, "/api/seller/login", "sam@shop.io", "secret1")
}

func productForm(t *testing.T, fields map[string]string, image []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "lamp.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodGet, "/", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "It works well", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/nowhere", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UP", decode[map[string]any](t, rec)["status"])
}

func TestCustomerRegistrationAndLogin(t *testing.T) {
	s := newTestServer(t, true)
	user := map[string]string{"name": "Ann", "email": "ann@shop.io", "password": "secret1"}

	rec := s.json(t, http.MethodPost, "/api/auth/user-register", "", user)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User registered successfully", decode[map[string]string](t, rec)["message"])
	assert.NotContains(t, rec.Body.String(), "secret1")

	rec = s.json(t, http.MethodPost, "/api/auth/user-register", "", user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists. Please sign in", decode[map[string]string](t, rec)["message"])

	wrong := s.json(t, http.MethodPost, "/api/auth/user-login", "", map[string]string{"email": "ann@shop.io", "password": "nope123"})
	unknown := s.json(t, http.MethodPost, "/api/auth/user-login", "", map[string]string{"email": "who@shop.io", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())

	token := s.login(t, "/api/auth/user-login", "ann@shop.io", "secret1")
	claims, err := s.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "customer", claims.Role)

	rec = s.do(t, http.MethodGet, "/api/auth/me", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "ann@shop.io", me["email"])
	assert.NotContains(t, me, "password")

	rec = s.do(t, http.MethodGet, "/api/auth/me", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegistrationValidation(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name    string
		path    string
		payload map[string]string
		message string
	}{
		{"missing fields", "/api/auth/user-register", map[string]string{"email": "a@b.c"}, "Please fill all fields"},
		{"seller five char password", "/api/seller/register", map[string]string{
			"name": "S", "email": "s@b.co", "password": "abcde", "phone_number": "1", "address": "x",
		}, "Password must be at least 6 characters"},
		{"no tld", "/api/auth/user-register", map[string]string{"name": "A", "email": "a@b", "password": "secret1"}, "Invalid email format"},
		{"not an email", "/api/auth/user-register", map[string]string{"name": "A", "email": "notanemail", "password": "secret1"}, "Invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.json(t, http.MethodPost, tt.path, "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decode[map[string]string](t, rec)["message"])
		})
	}

	rec := s.do(t, http.MethodPost, "/api/auth/user-register", "", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.json(t, http.MethodPost, "/api/seller/register", "", map[string]string{
		"name": "S", "email": "s@b.co", "password": "abcdef", "phone_number": "1", "address": "x",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Seller registered successfully", decode[map[string]string](t, rec)["message"])
}

func TestCategoryRoutes(t *testing.T) {
	s := newTestServer(t, true)
	token := s.sellerToken(t)

	rec := s.json(t, http.MethodPost, "/api/category", "", map[string]string{"name": "Books", "description": "Paper"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.json(t, http.MethodPost, "/api/category", token, map[string]string{"name": "Books", "description": "Paper"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Category](t, rec)

	rec = s.json(t, http.MethodPut, "/api/category/"+created.ID.Hex(), token, map[string]string{"name": "Novels", "description": "Fiction"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Novels", decode[model.Category](t, rec).Name)

	rec = s.json(t, http.MethodPost, "/api/category/"+created.ID.Hex(), token, map[string]string{"name": "Poems", "description": "Verse"})
	require.Equal(t, http.StatusOK, rec.Code)

	unknown := primitive.NewObjectID().Hex()
	rec = s.json(t, http.MethodPut, "/api/category/"+unknown, token, map[string]string{"name": "X", "description": "Y"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/category/"+unknown, token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/category/garbage", token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/category", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]model.Category](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Poems", list[0].Name)

	rec = s.do(t, http.MethodDelete, "/api/category/"+created.ID.Hex(), token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["message"])

	rec = s.do(t, http.MethodDelete, "/api/category/"+created.ID.Hex(), token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductRoutes(t *testing.T) {
	s := newTestServer(t, true)
	token := s.sellerToken(t)

	rec := s.json(t, http.MethodPost, "/api/category", token, map[string]string{"name": "Lamps", "description": "Light"})
	require.Equal(t, http.StatusCreated, rec.Code)
	category := decode[model.Category](t, rec)

	fields := map[string]string{"product_name": "Desk lamp", "category": category.ID.Hex(), "price": "19.99"}

	customer := s.json(t, http.MethodPost, "/api/auth/user-register", "", map[string]string{"name": "Ann", "email": "ann@shop.io", "password": "secret1"})
	require.Equal(t, http.StatusCreated, customer.Code)
	customerToken := s.login(t, "/api/auth/user-login", "ann@shop.io", "secret1")

	body, ct := productForm(t, fields, pngBytes)
	rec = s.do(t, http.MethodPost, "/api/product", customerToken, body, ct)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body, ct = productForm(t, fields, nil)
	rec = s.do(t, http.MethodPost, "/api/product", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please upload an image", decode[map[string]string](t, rec)["message"])

	body, ct = productForm(t, map[string]string{"product_name": "X", "category": primitive.NewObjectID().Hex(), "price": "1"}, pngBytes)
	rec = s.do(t, http.MethodPost, "/api/product", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Category not found", decode[map[string]string](t, rec)["message"])

	body, ct = productForm(t, fields, pngBytes)
	rec = s.do(t, http.MethodPost, "/api/product", token, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)

	rec = s.do(t, http.MethodGet, "/api/product", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 19.99, listed[0]["price"])
	assert.Equal(t, false, listed[0]["sale"])
	image, _ := listed[0]["image"].(string)
	assert.True(t, strings.HasPrefix(image, "http://example.com/product_images/"), image)

	rec = s.do(t, http.MethodGet, "/api/product/"+created["id"].(string), "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/product/"+primitive.NewObjectID().Hex(), "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, strings.TrimPrefix(image, "http://example.com"), "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	rec = s.do(t, http.MethodGet, "/product_images/missing.png", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/product_images/..%2Fsecret", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthNotRequired(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.json(t, http.MethodPost, "/api/category", "", map[string]string{"name": "Open", "description": "No auth"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/product", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
