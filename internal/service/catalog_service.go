package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	maxProductIDLen = 20
	maxTextLen      = 50
)

var maxGST = decimal.NewFromInt(100)

type ProductInput struct {
	ID              string          `json:"product_id"`
	Name            string          `json:"product_name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	Category        string          `json:"category"`
	RestockLevel    int             `json:"restock_level"`
	RestockQuantity int             `json:"restock_quantity"`
}

type CatalogService struct {
	repo    repository.Store
	restock *RestockEvaluator
}

func NewCatalogService(repo repository.Store, restock *RestockEvaluator) *CatalogService {
	return &CatalogService{repo: repo, restock: restock}
}

// ListProducts returns every product, or only those of category when it is
// not empty.
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]*domain.Product, error) {
	if category = strings.TrimSpace(category); category != "" {
		return s.repo.ListProductsByCategory(ctx, category)
	}
	return s.repo.ListProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, strings.TrimSpace(id))
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p := domain.Product{
		ID:              strings.TrimSpace(in.ID),
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		Price:           in.Price.Round(2),
		Quantity:        in.Quantity,
		Category:        strings.TrimSpace(in.Category),
		RestockLevel:    in.RestockLevel,
		RestockQuantity: in.RestockQuantity,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCategory(ctx, p.Category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, domain.NewValidationError("category", fmt.Sprintf("unknown category %q", p.Category))
		}
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}
	log.Printf("product %s (%s) added", p.ID, p.Name)
	return &p, nil
}

func validateProduct(p domain.Product) error {
	switch {
	case p.ID == "":
		return domain.NewValidationError("product_id", "is required")
	case len(p.ID) > maxProductIDLen:
		return domain.NewValidationError("product_id", fmt.Sprintf("must be at most %d digits", maxProductIDLen))
	case !isDigits(p.ID):
		return domain.NewValidationError("product_id", "must contain digits only")
	case p.Name == "":
		return domain.NewValidationError("product_name", "is required")
	case utf8.RuneCountInString(p.Name) > maxTextLen:
		return domain.NewValidationError("product_name", fmt.Sprintf("must be at most %d characters", maxTextLen))
	case p.Description == "":
		return domain.NewValidationError("description", "is required")
	case utf8.RuneCountInString(p.Description) > maxTextLen:
		return domain.NewValidationError("description", fmt.Sprintf("must be at most %d characters", maxTextLen))
	case p.Price.IsNegative():
		return domain.NewValidationError("price", "must not be negative")
	case p.Quantity < 0:
		return domain.NewValidationError("quantity", "must not be negative")
	case p.RestockLevel < 0:
		return domain.NewValidationError("restock_level", "must not be negative")
	case p.RestockQuantity < 0:
		return domain.NewValidationError("restock_quantity", "must not be negative")
	case p.Category == "":
		return domain.NewValidationError("category", "is required")
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	log.Printf("product %s deleted", id)
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, gst decimal.Decimal) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, domain.NewValidationError("category_name", "is required")
	case utf8.RuneCountInString(name) > maxTextLen:
		return nil, domain.NewValidationError("category_name", fmt.Sprintf("must be at most %d characters", maxTextLen))
	case gst.IsNegative() || gst.GreaterThan(maxGST):
		return nil, domain.NewValidationError("gst", "must be between 0 and 100")
	case !gst.Equal(gst.Round(2)):
		return nil, domain.NewValidationError("gst", "must have at most 2 decimal places")
	}

	c := domain.NewCategory(name, gst)
	if err := s.repo.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Restock runs the restock evaluator on its own and records an event per
// replenished product.
func (s *CatalogService) Restock(ctx context.Context) (*RestockReport, error) {
	var report *RestockReport
	err := s.repo.WithTx(ctx, func(tx repository.Store) error {
		var errEval error
		report, errEval = s.restock.Evaluate(ctx, tx)
		if errEval != nil {
			return errEval
		}
		return recordRestockEvents(ctx, tx, report.Notices)
	})
	if err != nil {
		return nil, fmt.Errorf("restock: %w", err)
	}
	return report, nil
}
