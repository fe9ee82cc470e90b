package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_inventory/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog *service.CatalogService
	timeout time.Duration
}

func NewProductHandler(catalog *service.CatalogService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type CreateCategoryRequestDTO struct {
	Name string          `json:"category_name"`
	GST  decimal.Decimal `json:"gst"`
}

// GET /api/v1/products[?category=]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, r.URL.Query().Get("category"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.catalog.CreateProduct(ctx, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// DELETE /api/v1/products/{product_id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "product_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// POST /api/v1/categories
func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateCategoryRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.catalog.CreateCategory(ctx, req.Name, req.GST)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// POST /api/v1/restock
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report, err := h.catalog.Restock(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
