package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"simple-shop/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopClient(t *testing.T) {
	var lastAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/user-login", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tkn"}`))
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		lastAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"name":"Ann","email":"ann@shop.io","role":"customer"}`))
	})
	mux.HandleFunc("POST /api/product", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("image")
		require.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"product_name":"` + r.FormValue("product_name") + `","price":1.5,"image":"/product_images/` + header.Filename + `"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	c := NewShopClient(NewHTTPClient(srv.URL+"/", 2*time.Second))

	_, err := c.Login(ctx, model.RoleCustomer, Credentials{Email: "ann@shop.io", Password: "bad"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	token, err := c.Login(ctx, model.RoleCustomer, Credentials{Email: "ann@shop.io", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tkn", token)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", me.Name)
	assert.Equal(t, "Bearer tkn", lastAuth)

	product, err := c.CreateProduct(ctx, map[string]string{"product_name": "Lamp"}, "lamp.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "Lamp", product.ProductName)
	assert.Equal(t, "1.5", product.Price.String())
	assert.Equal(t, "/product_images/lamp.png", product.Image)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/api/seller/register", registerPath(model.RoleSeller))
	assert.Equal(t, "/api/auth/user-register", registerPath(model.RoleCustomer))
	assert.Equal(t, "/api/seller/login", loginPath(model.RoleSeller))
	assert.Equal(t, "/api/auth/user-login", loginPath(model.RoleCustomer))
}
