package router

import (
	"net/http"

	handler "simple-shop/internal/handler/http"
	middleware_http "simple-shop/internal/middleware/http"
	"simple-shop/internal/model"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Image    *handler.ImageHandler
	Health   *handler.HealthHandler
}

type Options struct {
	Tokens         middleware_http.TokenParser
	AuthRequired   bool
	AllowedOrigins []string
}

// New builds the HTTP surface of the shop: auth, catalog, images and health.
func New(h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()

	authenticate := middleware_http.Authenticate(opts.Tokens)
	sellerOnly := func(next http.HandlerFunc) http.Handler {
		if !opts.AuthRequired {
			return next
		}
		return middleware_http.Chain(next, authenticate, middleware_http.RequireRole(string(model.RoleSeller)))
	}

	mux.HandleFunc("GET /{$}", handler.Root)
	mux.HandleFunc("GET /healthz", h.Health.Check)

	mux.HandleFunc("POST /api/auth/user-register", h.Auth.Register(model.RoleCustomer))
	mux.HandleFunc("POST /api/auth/user-login", h.Auth.Login(model.RoleCustomer))
	mux.HandleFunc("POST /api/seller/register", h.Auth.Register(model.RoleSeller))
	mux.HandleFunc("POST /api/seller/login", h.Auth.Login(model.RoleSeller))
	mux.Handle("GET /api/auth/me", authenticate(http.HandlerFunc(h.Auth.Me)))

	mux.Handle("POST /api/product", sellerOnly(h.Product.Create))
	mux.HandleFunc("GET /api/product", h.Product.List)
	mux.HandleFunc("GET /api/product/{id}", h.Product.Get)

	mux.Handle("POST /api/category", sellerOnly(h.Category.Create))
	mux.HandleFunc("GET /api/category", h.Category.List)
	mux.Handle("POST /api/category/{id}", sellerOnly(h.Category.Update))
	mux.Handle("PUT /api/category/{id}", sellerOnly(h.Category.Update))
	mux.Handle("DELETE /api/category/{id}", sellerOnly(h.Category.Delete))

	mux.HandleFunc("GET /product_images/{file}", h.Image.Serve)

	return middleware_http.Chain(mux,
		middleware_http.TraceMiddleware(),
		middleware_http.Recovery(),
		middleware_http.CORS(opts.AllowedOrigins),
	)
}
