package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/shopspring/decimal"
)

// Common errors returned by the store
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateKey      = errors.New("record with this key already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductStore covers product records and stock bookkeeping.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	// DecrementStock lowers quantity by n, failing with ErrInsufficientStock
	// when fewer than n units are on hand
	DecrementStock(ctx context.Context, id string, n int) error

	// IncrementStock raises quantity by n
	IncrementStock(ctx context.Context, id string, n int) error

	// ProductCategory returns the category name of a product
	ProductCategory(ctx context.Context, productID string) (string, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, name string) (*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	CategoryTax(ctx context.Context, name string) (cgst, sgst decimal.Decimal, err error)
}

type UserStore interface {
	GetUser(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error

	// EnsureUser inserts u unless a user with the same name exists
	EnsureUser(ctx context.Context, u *domain.User) error

	// UpdatePassword replaces the hash of the user matching both username
	// and email
	UpdatePassword(ctx context.Context, username, email, hash string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

type OrderStore interface {
	// NextOrderID is max(order_id)+1, or 1001 for an empty table
	NextOrderID(ctx context.Context) (int64, error)

	// NextOrderItemID is max(order_item_id)+1, or 1 for an empty table
	NextOrderItemID(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, o *domain.Order) error
	CreateOrderItem(ctx context.Context, item *domain.OrderItem) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListHistory(ctx context.Context, username string) ([]*domain.HistoryLine, error)
}

type AnalyticsStore interface {
	ListOrderTotals(ctx context.Context) ([]OrderTotal, error)
	CountOrders(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	PaymentStatusCounts(ctx context.Context) (map[domain.PaymentStatus]int, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	UnitsSoldByProduct(ctx context.Context, limit int, ascending bool) ([]domain.Point, error)
	RevenueByProduct(ctx context.Context, limit int) ([]domain.Point, error)
	RevenueByCategory(ctx context.Context) ([]domain.Point, error)
	ProductsPerCategory(ctx context.Context) ([]domain.Point, error)
	SalesByLocation(ctx context.Context) ([]domain.Point, error)
	QuantityByLocation(ctx context.Context) ([]domain.Point, error)
}

type OutboxStore interface {
	AddOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	ProductStore
	CategoryStore
	UserStore
	OrderStore
	AnalyticsStore
	OutboxStore

	// WithTx runs fn inside a transaction, see Repository.WithTx
	WithTx(ctx context.Context, fn func(Store) error) error
}

var _ Store = (*Repository)(nil)
