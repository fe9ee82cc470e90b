package service

import (
	"errors"

	"github.com/fjod/go_inventory/internal/invoice"
)

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownReport      = errors.New("unknown analytics report")
	ErrMissingTaxRate     = invoice.ErrMissingTaxRate
)
