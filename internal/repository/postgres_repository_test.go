package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_inventory/internal/domain"
	db "github.com/fjod/go_inventory/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) (*db.Repository, func()) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &db.Credentials{
		Driver:            db.DriverPostgres,
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := db.NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestPostgres_CheckoutWritesAndDuplicates(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	cat := domain.NewCategory("Grocery", decimal.NewFromInt(5))
	require.NoError(t, repo.CreateCategory(ctx, &cat))
	assert.ErrorIs(t, repo.CreateCategory(ctx, &cat), db.ErrDuplicateKey)

	p := &domain.Product{ID: "10", Name: "Rice", Description: "5kg bag", Price: decimal.RequireFromString("12.50"), Quantity: 4, Category: "Grocery", RestockLevel: 2, RestockQuantity: 6}
	require.NoError(t, repo.CreateProduct(ctx, p))
	assert.ErrorIs(t, repo.CreateProduct(ctx, p), db.ErrDuplicateKey)

	err := repo.WithTx(ctx, func(s db.Store) error {
		id, err := s.NextOrderID(ctx)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1001), id)
		if err := s.DecrementStock(ctx, "10", 3); err != nil {
			return err
		}
		if err := s.CreateOrder(ctx, &domain.Order{
			ID: id, User: "alice", Date: time.Now(), TotalItems: 3,
			TotalAmount: decimal.RequireFromString("37.50"), PaymentStatus: domain.PaymentStatusPaid,
		}); err != nil {
			return err
		}
		if err := s.CreateOrderItem(ctx, &domain.OrderItem{ID: 1, OrderID: id, ProductID: "10", Quantity: 3, Price: p.Price}); err != nil {
			return err
		}
		return s.AddOutboxEvent(ctx, "1001", db.EventOrderPlaced, []byte(`{"order_id":1001}`))
	})
	require.NoError(t, err)

	order, err := repo.GetOrder(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, "37.50", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 1)

	assert.ErrorIs(t, repo.DecrementStock(ctx, "10", 2), db.ErrInsufficientStock)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.JSONEq(t, `{"order_id":1001}`, string(events[0].Payload))
}
