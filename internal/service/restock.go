package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/repository"
)

type RestockReport struct {
	Notices []domain.RestockNotice `json:"restocked"`
	// Summary is set only when more than one product was restocked.
	Summary string `json:"summary,omitempty"`
}

// RestockEvaluator tops up every product sitting at or below its restock
// level. Running it twice in a row is a no-op unless the configured restock
// quantity is too small to lift stock above the level.
type RestockEvaluator struct{}

func NewRestockEvaluator() *RestockEvaluator {
	return &RestockEvaluator{}
}

func (e *RestockEvaluator) Evaluate(ctx context.Context, products repository.ProductStore) (*RestockReport, error) {
	all, err := products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products for restock: %w", err)
	}

	report := &RestockReport{Notices: make([]domain.RestockNotice, 0)}
	for _, p := range all {
		if !p.NeedsRestock() {
			continue
		}
		if err := products.IncrementStock(ctx, p.ID, p.RestockQuantity); err != nil {
			return nil, fmt.Errorf("restock product %s: %w", p.ID, err)
		}

		notice := domain.RestockNotice{
			ProductID:        p.ID,
			ProductName:      p.Name,
			PreviousQuantity: p.Quantity,
			Restocked:        p.RestockQuantity,
			NewQuantity:      p.Quantity + p.RestockQuantity,
			RestockLevel:     p.RestockLevel,
		}
		log.Printf("product %s (%s) restocked: %d -> %d, restock level %d",
			p.ID, p.Name, notice.PreviousQuantity, notice.NewQuantity, notice.RestockLevel)
		report.Notices = append(report.Notices, notice)
	}

	if len(report.Notices) > 1 {
		names := make([]string, 0, len(report.Notices))
		for _, n := range report.Notices {
			names = append(names, n.ProductName)
		}
		report.Summary = fmt.Sprintf("%d products restocked: %s", len(names), strings.Join(names, ", "))
	}
	return report, nil
}

func recordRestockEvents(ctx context.Context, store repository.OutboxStore, notices []domain.RestockNotice) error {
	for _, n := range notices {
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("failed to marshal restock payload: %w", err)
		}
		if err := store.AddOutboxEvent(ctx, n.ProductID, repository.EventProductRestocked, payload); err != nil {
			return err
		}
	}
	return nil
}
