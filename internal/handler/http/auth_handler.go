package http

import (
	"net/http"

	"simple-shop/internal/auth"
	"simple-shop/internal/model"
	"simple-shop/internal/service"

	"go.opentelemetry.io/otel"
)

type AuthHandler struct {
	accounts map[model.Role]*service.AccountService
}

var HttpAuthHandlerTracer = otel.Tracer("HttpAuthHandler")

func NewAuthHandler(accounts ...*service.AccountService) *AuthHandler {
	h := &AuthHandler{accounts: make(map[model.Role]*service.AccountService, len(accounts))}
	for _, svc := range accounts {
		h.accounts[svc.Role()] = svc
	}
	return h
}

// Register returns the registration endpoint for one actor type.
func (h *AuthHandler) Register(role model.Role) http.HandlerFunc {
	svc := h.accounts[role]
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := HttpAuthHandlerTracer.Start(r.Context(), "HttpAuthHandler.Register")
		defer span.End()

		var in service.RegisterInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(ctx, w, err)
			return
		}

		if _, err := svc.Register(ctx, in); err != nil {
			writeError(ctx, w, err)
			return
		}
		writeMessage(w, http.StatusCreated, role.Label()+" registered successfully")
	}
}

// Login returns the login endpoint for one actor type.
func (h *AuthHandler) Login(role model.Role) http.HandlerFunc {
	svc := h.accounts[role]
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := HttpAuthHandlerTracer.Start(r.Context(), "HttpAuthHandler.Login")
		defer span.End()

		var in service.LoginInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(ctx, w, err)
			return
		}

		token, err := svc.Login(ctx, in)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// Me returns the account behind the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpAuthHandlerTracer.Start(r.Context(), "HttpAuthHandler.Me")
	defer span.End()

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		writeError(ctx, w, model.AuthError("Unauthorized"))
		return
	}
	svc, ok := h.accounts[model.Role(claims.Role)]
	if !ok {
		writeError(ctx, w, model.ForbiddenError("Forbidden"))
		return
	}

	account, err := svc.Me(ctx, claims.Subject)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
