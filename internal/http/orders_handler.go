package http

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_inventory/internal/invoice"
	"github.com/fjod/go_inventory/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	orders  *service.OrderService
	timeout time.Duration
}

func NewOrdersHandler(orders *service.OrderService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID, user)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// GET /api/v1/orders/{order_id}/invoice
func (h *OrdersHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	// render fully before writing so errors can still produce a JSON body
	var buf bytes.Buffer
	if err := h.orders.WriteInvoice(ctx, &buf, orderID, user); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.FileName(orderID)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("failed to write invoice %d: %v", orderID, err)
	}
}

// GET /api/v1/history
func (h *OrdersHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	lines, err := h.orders.History(ctx, user.Username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lines)
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a positive integer")
		return 0, false
	}
	return orderID, true
}
