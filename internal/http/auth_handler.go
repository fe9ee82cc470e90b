package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_inventory/internal/service"
)

type AuthHandler struct {
	auth    *service.AuthService
	shop    *service.ShopService
	timeout time.Duration
}

func NewAuthHandler(auth *service.AuthService, shop *service.ShopService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		shop:    shop,
		timeout: timeout,
	}
}

type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type ResetPasswordRequestDTO struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.Register(ctx, req.Username, req.Password, req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ResetPasswordRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(ctx, req.Username, req.Email, req.Password, req.ConfirmPassword); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// POST /api/v1/auth/logout discards the session cart. Tokens are stateless
// and simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.shop.ClearCart(ctx, user.Username); err != nil {
		handleServiceError(w, err)
		return
	}
	log.Printf("user %s logged out", user.Username)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// GET /api/v1/users
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	users, err := h.auth.ListUsers(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}
