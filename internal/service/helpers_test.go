package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_inventory/internal/auth"
	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/invoice"
	"github.com/fjod/go_inventory/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testCustomer = domain.Customer{Name: "Asha", Phone: "9999999999", Address: "12 Market Road, Pune"}

func setupRepo(t *testing.T) *repository.Repository {
	t.Helper()
	creds := &repository.Credentials{Driver: repository.DriverSQLite, Path: ":memory:"}
	repo, err := repository.NewRepository(creds)
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations(creds))
	t.Cleanup(func() { repo.Close() })
	return repo
}

func addCategory(t *testing.T, repo *repository.Repository, name string, gst int64) {
	t.Helper()
	c := domain.NewCategory(name, decimal.NewFromInt(gst))
	require.NoError(t, repo.CreateCategory(context.Background(), &c))
}

func addProduct(t *testing.T, repo *repository.Repository, p domain.Product) {
	t.Helper()
	require.NoError(t, repo.CreateProduct(context.Background(), &p))
}

// seedShop creates P1 ($10, 10 on hand) and P2 ($5, 3 on hand, restocks
// by 10 at or below 5).
func seedShop(t *testing.T, repo *repository.Repository) {
	t.Helper()
	addCategory(t, repo, "Electronics", 18)
	addProduct(t, repo, domain.Product{ID: "1", Name: "Keyboard", Description: "USB keyboard", Price: decimal.RequireFromString("10.00"), Quantity: 10, Category: "Electronics", RestockLevel: 5, RestockQuantity: 10})
	addProduct(t, repo, domain.Product{ID: "2", Name: "Mouse", Description: "Wireless mouse", Price: decimal.RequireFromString("5.00"), Quantity: 3, Category: "Electronics", RestockLevel: 5, RestockQuantity: 10})
}

func quantityOf(t *testing.T, repo *repository.Repository, id string) int {
	t.Helper()
	p, err := repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func testHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasherWithCost(bcrypt.MinCost)
}

// fakeInvoices implements InvoiceWriter for testing
type fakeInvoices struct {
	saved []*invoice.Invoice
	err   error
}

func (f *fakeInvoices) Save(inv *invoice.Invoice) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, inv)
	return invoice.FileName(inv.OrderID), nil
}

var errBoom = errors.New("boom")
