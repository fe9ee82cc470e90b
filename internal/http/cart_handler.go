package http

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	shop     *service.ShopService
	checkout *service.CheckoutService
	timeout  time.Duration
}

func NewCartHandler(shop *service.ShopService, checkout *service.CheckoutService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		shop:     shop,
		checkout: checkout,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID    string `json:"product_id"`
	Quantity     int    `json:"quantity"`
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
	Address      string `json:"address"`
}

type CheckoutRequestDTO struct {
	PayNow bool `json:"pay_now"`
}

type CartResponseDTO struct {
	*domain.Cart
	Total string `json:"total"`
}

func toCartResponse(cart *domain.Cart) CartResponseDTO {
	return CartResponseDTO{Cart: cart, Total: cart.Total().StringFixed(2)}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart, err := h.shop.GetCart(ctx, user.Username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	customer := domain.Customer{Name: req.CustomerName, Phone: req.PhoneNumber, Address: req.Address}
	cart, err := h.shop.AddToCart(ctx, user.Username, req.ProductID, req.Quantity, customer)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartResponse(cart))
}

// DELETE /api/v1/cart/items/{line_id}?confirm=true
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lineID, err := strconv.Atoi(chi.URLParam(r, "line_id"))
	if err != nil || lineID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line_id must be a positive integer")
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	cart, err := h.shop.RemoveFromCart(ctx, user.Username, lineID, confirmed)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
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
	empty := domain.NewCart(user.Username)
	respondJSON(w, http.StatusOK, toCartResponse(&empty))
}

// POST /api/v1/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := h.checkout.Checkout(ctx, user.Username, req.PayNow)
	if err != nil {
		log.Printf("request %s: checkout for %s failed: %v", getRequestID(r.Context()), user.Username, err)
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, receipt)
}
