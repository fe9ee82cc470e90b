package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/go_inventory/internal/auth"
	"github.com/fjod/go_inventory/internal/cartstore"
	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/repository"
	"github.com/fjod/go_inventory/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1MB

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleServiceError converts service and repository errors to HTTP status
// codes.
func handleServiceError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   ve.Message,
			Code:    "validation_error",
			Details: ve.Field,
		})
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		httpStatus, code = http.StatusBadRequest, "empty_cart"
	case errors.Is(err, service.ErrMissingTaxRate):
		httpStatus, code = http.StatusUnprocessableEntity, "missing_tax_rate"
	case errors.Is(err, repository.ErrDuplicateKey):
		httpStatus, code = http.StatusConflict, "duplicate_key"
	case errors.Is(err, repository.ErrInsufficientStock):
		httpStatus, code = http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrConfirmationRequired):
		httpStatus, code = http.StatusConflict, "confirmation_required"
	case errors.Is(err, service.ErrInvalidCredentials):
		httpStatus, code = http.StatusUnauthorized, "auth_error"
	case errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrInvalidToken):
		httpStatus, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, cartstore.ErrCartNotFound),
		errors.Is(err, service.ErrUnknownReport):
		httpStatus, code = http.StatusNotFound, "not_found"
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
