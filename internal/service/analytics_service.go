package service

import (
	"context"
	"time"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	topSellingLimit       = 5
	revenueByProductLimit = 10
	sharedQueryTimeout    = 30 * time.Second
)

// Report names accepted by AnalyticsService.Report.
const (
	ReportTopSelling          = "top-selling"
	ReportLeastSelling        = "least-selling"
	ReportRevenueByProduct    = "revenue-by-product"
	ReportRevenueByCategory   = "revenue-by-category"
	ReportProductsPerCategory = "products-per-category"
	ReportSalesByLocation     = "sales-by-location"
	ReportQuantityByLocation  = "quantity-by-location"
	ReportMonthlyRevenue      = "monthly-revenue"
	ReportSummary             = "summary"
)

type Summary struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProducts int             `json:"total_products"`
}

type AnalyticsService struct {
	repo repository.AnalyticsStore
	sfg  singleflight.Group // collapses identical concurrent reports
	now  func() time.Time
}

func NewAnalyticsService(repo repository.AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	v, err := s.shared(ctx, "dashboard", func(ctx context.Context) (interface{}, error) {
		return s.dashboard(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.DashboardStats), nil
}

func (s *AnalyticsService) dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	totals, err := s.repo.ListOrderTotals(ctx)
	if err != nil {
		return nil, err
	}
	totalOrders, err := s.repo.CountOrders(ctx)
	if err != nil {
		return nil, err
	}
	totalProducts, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := s.repo.PaymentStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats := &domain.DashboardStats{
		SalesToday:      decimal.Zero,
		TotalOrders:     totalOrders,
		TotalProducts:   totalProducts,
		PaymentStatus:   statuses,
		MonthlyEarnings: monthlySeries(totals, now.Year(), true),
	}
	for _, t := range totals {
		if !t.Date.Before(dayStart) && t.Date.Before(dayEnd) {
			stats.OrdersToday++
			stats.SalesToday = stats.SalesToday.Add(t.Amount)
		}
	}
	stats.SalesToday = stats.SalesToday.Round(2)
	return stats, nil
}

// monthlySeries sums order amounts per calendar month of year, Jan..Dec.
func monthlySeries(totals []repository.OrderTotal, year int, paidOnly bool) []domain.Point {
	var sums [12]decimal.Decimal
	for _, t := range totals {
		if t.Date.Year() != year {
			continue
		}
		if paidOnly && t.Status != domain.PaymentStatusPaid {
			continue
		}
		m := int(t.Date.Month()) - 1
		sums[m] = sums[m].Add(t.Amount)
	}

	points := make([]domain.Point, 12)
	for i := range sums {
		points[i] = domain.Point{
			Label: time.Month(i + 1).String()[:3],
			Value: sums[i].Round(2),
		}
	}
	return points
}

// Report returns the named chart series or, for ReportSummary, the revenue
// and product totals.
func (s *AnalyticsService) Report(ctx context.Context, name string) (interface{}, error) {
	return s.shared(ctx, "report:"+name, func(ctx context.Context) (interface{}, error) {
		return s.report(ctx, name)
	})
}

// shared runs fn once for every concurrent caller of key. fn runs on a
// context detached from the caller that started it, bounded by
// sharedQueryTimeout; each caller stops waiting when its own ctx ends.
func (s *AnalyticsService) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedQueryTimeout)
		defer cancel()
		return fn(sctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (s *AnalyticsService) report(ctx context.Context, name string) (interface{}, error) {
	var (
		points []domain.Point
		err    error
	)
	switch name {
	case ReportTopSelling:
		points, err = s.repo.UnitsSoldByProduct(ctx, topSellingLimit, false)
	case ReportLeastSelling:
		points, err = s.repo.UnitsSoldByProduct(ctx, topSellingLimit, true)
	case ReportRevenueByProduct:
		points, err = s.repo.RevenueByProduct(ctx, revenueByProductLimit)
	case ReportRevenueByCategory:
		points, err = s.repo.RevenueByCategory(ctx)
	case ReportProductsPerCategory:
		points, err = s.repo.ProductsPerCategory(ctx)
	case ReportSalesByLocation:
		points, err = s.repo.SalesByLocation(ctx)
	case ReportQuantityByLocation:
		points, err = s.repo.QuantityByLocation(ctx)
	case ReportMonthlyRevenue:
		totals, errTotals := s.repo.ListOrderTotals(ctx)
		if errTotals != nil {
			return nil, errTotals
		}
		return monthlySeries(totals, s.now().UTC().Year(), false), nil
	case ReportSummary:
		revenue, errRev := s.repo.TotalRevenue(ctx)
		if errRev != nil {
			return nil, errRev
		}
		products, errCount := s.repo.CountProducts(ctx)
		if errCount != nil {
			return nil, errCount
		}
		return &Summary{TotalRevenue: revenue.Round(2), TotalProducts: products}, nil
	default:
		return nil, ErrUnknownReport
	}
	if err != nil {
		return nil, err
	}

	for i := range points {
		points[i].Value = points[i].Value.Round(2)
	}
	return points, nil
}
