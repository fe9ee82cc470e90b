package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_inventory/internal/auth"
	"github.com/fjod/go_inventory/internal/cartstore"
	h "github.com/fjod/go_inventory/internal/http"
	"github.com/fjod/go_inventory/internal/invoice"
	"github.com/fjod/go_inventory/internal/publisher"
	"github.com/fjod/go_inventory/internal/repository"
	"github.com/fjod/go_inventory/internal/service"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	HTTPPort        string
	DB              repository.Credentials
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	JWTSecret       string
	TokenDuration   time.Duration
	InvoiceDir      string
	BusinessName    string
	BusinessGSTIN   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() (*Config, error) {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, errors.New("invalid DB_PORT")
	}

	var brokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		DB: repository.Credentials{
			Driver:            getEnv("DB_DRIVER", repository.DriverSQLite),
			Path:              getEnv("DB_PATH", "inventory.db"),
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              port,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "inventory"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", ""),
		},
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    brokers,
		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		TokenDuration:   8 * time.Hour,
		InvoiceDir:      getEnv("INVOICE_DIR", "invoices"),
		BusinessName:    getEnv("BUSINESS_NAME", "Inventory Desk"),
		BusinessGSTIN:   getEnv("BUSINESS_GSTIN", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("inventory service starting...")
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	var wg sync.WaitGroup

	// Database setup
	repo, err := repository.NewRepository(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(&cfg.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Cart store: Redis when configured, process memory otherwise
	var carts cartstore.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		carts = cartstore.NewRedisStore(redisClient)
		log.Printf("Carts stored in Redis at %s", cfg.RedisAddr)
	} else {
		carts = cartstore.NewMemoryStore()
	}

	tokens := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:     cfg.JWTSecret,
		TokenDuration: cfg.TokenDuration,
		Issuer:        "inventory-service",
	})
	renderer := invoice.NewPDFRenderer(cfg.BusinessName, cfg.BusinessGSTIN)
	restock := service.NewRestockEvaluator()

	authService := service.NewAuthService(repo, auth.NewPasswordHasher(), tokens)
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureDefaultAdmin(seedCtx); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}
	seedCancel()

	router := h.NewRouter(h.Services{
		Auth:      authService,
		Catalog:   service.NewCatalogService(repo, restock),
		Shop:      service.NewShopService(repo, carts),
		Checkout:  service.NewCheckoutService(repo, carts, restock, invoice.NewFileStore(cfg.InvoiceDir, renderer)),
		Orders:    service.NewOrderService(repo, renderer),
		Analytics: service.NewAnalyticsService(repo),
	}, tokens, cfg.RequestTimeout)

	// Outbox relay
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	var poller *publisher.OutboxPoller
	if len(cfg.KafkaBrokers) > 0 {
		poller = publisher.NewOutboxPoller(repo, cfg.KafkaBrokers...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(pollerCtx)
		}()
		log.Printf("Publishing events to %s", strings.Join(cfg.KafkaBrokers, ","))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Inventory service listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	pollerCancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("Poller stopped cleanly")
	case <-ctx.Done():
		log.Println("Poller didn't stop in time")
	}

	if poller != nil {
		if err := poller.Close(); err != nil {
			log.Printf("failed to close kafka writer: %v", err)
		}
	}
	log.Println("server exited")
}
