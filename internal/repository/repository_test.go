package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_inventory/internal/domain"
	db "github.com/fjod/go_inventory/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.Repository {
	// Use in-memory database for tests
	creds := &db.Credentials{Driver: db.DriverSQLite, Path: ":memory:", MigrationsDirPath: "./migrations"}
	repo, err := db.NewRepository(creds)
	require.NoError(t, err)

	require.NoError(t, repo.RunMigrations(creds))
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedCatalog(t *testing.T, repo *db.Repository) {
	ctx := context.Background()
	cat := domain.NewCategory("Electronics", decimal.NewFromInt(18))
	require.NoError(t, repo.CreateCategory(ctx, &cat))

	for _, p := range []domain.Product{
		{ID: "1", Name: "Keyboard", Description: "USB keyboard", Price: decimal.RequireFromString("10.00"), Quantity: 10, Category: "Electronics", RestockLevel: 5, RestockQuantity: 10},
		{ID: "2", Name: "Mouse", Description: "Wireless mouse", Price: decimal.RequireFromString("5.00"), Quantity: 2, Category: "Electronics", RestockLevel: 5, RestockQuantity: 10},
	} {
		p := p
		require.NoError(t, repo.CreateProduct(ctx, &p))
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	creds := &db.Credentials{Driver: db.DriverSQLite, Path: ":memory:"}
	repo, err := db.NewRepository(creds)
	require.NoError(t, err)
	defer repo.Close()

	// embedded migrations, applied twice
	require.NoError(t, repo.RunMigrations(creds))
	require.NoError(t, repo.RunMigrations(creds))

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestNewRepository_UnknownDriver(t *testing.T) {
	_, err := db.NewRepository(&db.Credentials{Driver: "oracle"})
	assert.Error(t, err)
}

func TestGetProduct_ReturnsProduct(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)

	product, err := repo.GetProduct(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", product.Name)
	assert.Equal(t, "10.00", product.Price.StringFixed(2))
	assert.Equal(t, 10, product.Quantity)
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	product, err := repo.GetProduct(context.Background(), "404")
	assert.Nil(t, product)
	assert.ErrorIs(t, err, db.ErrProductNotFound)
}

func TestListProducts_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListProducts(ctx)
	assert.Error(t, err)
}

func TestListProductsByCategory(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)
	ctx := context.Background()

	books := domain.NewCategory("Books", decimal.NewFromInt(5))
	require.NoError(t, repo.CreateCategory(ctx, &books))
	require.NoError(t, repo.CreateProduct(ctx, &domain.Product{
		ID: "3", Name: "Novel", Description: "Paperback", Price: decimal.NewFromInt(7), Quantity: 1, Category: "Books",
	}))

	products, err := repo.ListProductsByCategory(ctx, "Books")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "3", products[0].ID)
}

func TestCreateProduct_DuplicateRejected(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)
	ctx := context.Background()

	err := repo.CreateProduct(ctx, &domain.Product{
		ID: "1", Name: "Other", Description: "x", Price: decimal.NewFromInt(1), Quantity: 1, Category: "Electronics",
	})
	assert.ErrorIs(t, err, db.ErrDuplicateKey)

	product, err := repo.GetProduct(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", product.Name)
}

func TestCreateCategory_DuplicateRejected(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)

	again := domain.NewCategory("Electronics", decimal.NewFromInt(12))
	err := repo.CreateCategory(context.Background(), &again)
	assert.ErrorIs(t, err, db.ErrDuplicateKey)

	cgst, sgst, err := repo.CategoryTax(context.Background(), "Electronics")
	require.NoError(t, err)
	assert.Equal(t, "9.00", cgst.StringFixed(2))
	assert.Equal(t, "9.00", sgst.StringFixed(2))
}

func TestDeleteProduct(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.DeleteProduct(ctx, "1"))
	assert.ErrorIs(t, repo.DeleteProduct(ctx, "1"), db.ErrProductNotFound)
}

func TestDecrementStock_Guarded(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.DecrementStock(ctx, "2", 2))
	err := repo.DecrementStock(ctx, "2", 1)
	assert.ErrorIs(t, err, db.ErrInsufficientStock)
	assert.ErrorIs(t, repo.DecrementStock(ctx, "404", 1), db.ErrProductNotFound)

	product, err := repo.GetProduct(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 0, product.Quantity)
}

func TestNextOrderID_DefaultsAndIncrements(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id, err := repo.NextOrderID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), id)

	itemID, err := repo.NextOrderItemID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), itemID)

	require.NoError(t, repo.CreateOrder(ctx, &domain.Order{
		ID: 1050, User: "alice", Date: time.Now(), TotalItems: 1,
		TotalAmount: decimal.NewFromInt(5), PaymentStatus: domain.PaymentStatusPaid,
	}))

	id, err = repo.NextOrderID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1051), id)
}

func TestGetOrder_WithItems(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)
	ctx := context.Background()

	placed := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	require.NoError(t, repo.CreateOrder(ctx, &domain.Order{
		ID: 1001, User: "alice", Date: placed, TotalItems: 3,
		TotalAmount: decimal.RequireFromString("25.00"), PaymentStatus: domain.PaymentStatusPending,
		CustomerName: "Asha", PhoneNumber: "123", Address: "Pune",
	}))
	require.NoError(t, repo.CreateOrderItem(ctx, &domain.OrderItem{ID: 1, OrderID: 1001, ProductID: "1", Quantity: 2, Price: decimal.NewFromInt(10)}))
	require.NoError(t, repo.CreateOrderItem(ctx, &domain.OrderItem{ID: 2, OrderID: 1001, ProductID: "2", Quantity: 1, Price: decimal.NewFromInt(5)}))

	order, err := repo.GetOrder(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, "alice", order.User)
	assert.True(t, placed.Equal(order.Date))
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Keyboard", order.Items[0].ProductName)

	history, err := repo.ListHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = repo.GetOrder(ctx, 999)
	assert.ErrorIs(t, err, db.ErrOrderNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithTx(ctx, func(s db.Store) error {
		if err := s.DecrementStock(ctx, "1", 4); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	product, err := repo.GetProduct(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 10, product.Quantity)
}

func TestWithTx_Commits(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)
	ctx := context.Background()

	err := repo.WithTx(ctx, func(s db.Store) error {
		return s.IncrementStock(ctx, "2", 10)
	})
	require.NoError(t, err)

	product, err := repo.GetProduct(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 12, product.Quantity)
}

func TestUsers_EnsureAndResetPassword(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	admin := &domain.User{Username: "ADMIN", PasswordHash: "h1", AccountType: domain.AccountAdmin, Email: "admin@example.com"}
	require.NoError(t, repo.EnsureUser(ctx, admin))
	require.NoError(t, repo.EnsureUser(ctx, &domain.User{Username: "ADMIN", PasswordHash: "other", AccountType: domain.AccountUser, Email: "x"}))

	u, err := repo.GetUser(ctx, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "h1", u.PasswordHash)
	assert.Equal(t, domain.AccountAdmin, u.AccountType)

	assert.ErrorIs(t, repo.CreateUser(ctx, admin), db.ErrDuplicateKey)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "ADMIN", "wrong@example.com", "h2"), db.ErrUserNotFound)
	require.NoError(t, repo.UpdatePassword(ctx, "ADMIN", "admin@example.com", "h2"))

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "h2", users[0].PasswordHash)
}

func TestOutbox_FetchAndMark(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.AddOutboxEvent(ctx, "1001", db.EventOrderPlaced, []byte(`{"order_id":1001}`)))
	require.NoError(t, repo.AddOutboxEvent(ctx, "2", db.EventProductRestocked, []byte(`{"product_id":"2"}`)))

	events, err := repo.GetUnprocessedEvents(ctx, 100)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, db.EventOrderPlaced, events[0].EventType)
	assert.JSONEq(t, `{"order_id":1001}`, string(events[0].Payload))

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))
	events, err = repo.GetUnprocessedEvents(ctx, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2", events[0].AggregateId)
}

func TestAnalyticsQueries(t *testing.T) {
	repo := setupTestDB(t)
	seedCatalog(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.CreateOrder(ctx, &domain.Order{
		ID: 1001, User: "alice", Date: time.Now(), TotalItems: 3,
		TotalAmount: decimal.RequireFromString("25.00"), PaymentStatus: domain.PaymentStatusPaid,
		CustomerName: "Asha", PhoneNumber: "1", Address: "Pune Camp Road 5",
	}))
	require.NoError(t, repo.CreateOrderItem(ctx, &domain.OrderItem{ID: 1, OrderID: 1001, ProductID: "1", Quantity: 2, Price: decimal.NewFromInt(10)}))
	require.NoError(t, repo.CreateOrderItem(ctx, &domain.OrderItem{ID: 2, OrderID: 1001, ProductID: "2", Quantity: 1, Price: decimal.NewFromInt(5)}))

	top, err := repo.UnitsSoldByProduct(ctx, 5, false)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Keyboard (Electronics)", top[0].Label)
	assert.Equal(t, int64(2), top[0].Value.IntPart())

	least, err := repo.UnitsSoldByProduct(ctx, 5, true)
	require.NoError(t, err)
	assert.Equal(t, "Mouse (Electronics)", least[0].Label)

	byCategory, err := repo.RevenueByCategory(ctx)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "25.00", byCategory[0].Value.StringFixed(2))

	byLocation, err := repo.SalesByLocation(ctx)
	require.NoError(t, err)
	require.Len(t, byLocation, 1)
	assert.Equal(t, "Pune Camp ", byLocation[0].Label)

	qty, err := repo.QuantityByLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), qty[0].Value.IntPart())

	counts, err := repo.PaymentStatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.PaymentStatusPaid])
	assert.Equal(t, 0, counts[domain.PaymentStatusPending])

	revenue, err := repo.TotalRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "25.00", revenue.StringFixed(2))

	perCategory, err := repo.ProductsPerCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), perCategory[0].Value.IntPart())
}
