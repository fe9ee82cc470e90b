package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_inventory/internal/auth"
	"github.com/fjod/go_inventory/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Services bundles what the router dispatches to.
type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	Shop      *service.ShopService
	Checkout  *service.CheckoutService
	Orders    *service.OrderService
	Analytics *service.AnalyticsService
}

func NewRouter(svc Services, tokens *auth.JWTManager, requestTimeout time.Duration) http.Handler {
	authHandler := NewAuthHandler(svc.Auth, svc.Shop, requestTimeout)
	productHandler := NewProductHandler(svc.Catalog, requestTimeout)
	cartHandler := NewCartHandler(svc.Shop, svc.Checkout, requestTimeout)
	ordersHandler := NewOrdersHandler(svc.Orders, requestTimeout)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics, requestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.With(AuthMiddleware(tokens)).Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokens))

			r.Get("/dashboard", analyticsHandler.Dashboard)
			r.Get("/products", productHandler.List)
			r.Get("/products/{product_id}", productHandler.Get)
			r.Get("/categories", productHandler.ListCategories)
			r.Get("/orders/{order_id}", ordersHandler.GetOrder)
			r.Get("/orders/{order_id}/invoice", ordersHandler.GetInvoice)
			r.Get("/history", ordersHandler.History)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Delete("/items/{line_id}", cartHandler.RemoveItem)
			})
			r.Post("/checkout", cartHandler.Checkout)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Post("/products", productHandler.Create)
				r.Delete("/products/{product_id}", productHandler.Delete)
				r.Post("/categories", productHandler.CreateCategory)
				r.Post("/restock", productHandler.Restock)
				r.Get("/orders", ordersHandler.ListOrders)
				r.Get("/users", authHandler.ListUsers)
				r.Get("/analytics/{report}", analyticsHandler.Report)
			})
		})
	})

	return otelhttp.NewHandler(r, "inventory-api")
}
