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
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/httpapi"
	"github.com/fjod/storefront/internal/inventory"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/storage"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("storefront starting...")

	httpPort := getEnv("HTTP_PORT", "8080")

	// Database setup
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "storefront")
	migrationsPath := getEnv("MIGRATIONS_PATH", "./migrations")

	port, err := strconv.Atoi(dbPort)
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}

	creds := &storage.Credentials{
		Host:              dbHost,
		Port:              port,
		User:              dbUser,
		Password:          dbPass,
		DBName:            dbName,
		MigrationsDirPath: migrationsPath,
	}

	db, err := storage.Open(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Redis setup
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	pingCancel()
	log.Println("Connected to redis")

	taxRate, err := decimal.NewFromString(getEnv("TAX_RATE", "0.08"))
	if err != nil {
		log.Fatalf("Invalid TAX_RATE: %v", err)
	}

	// Wiring
	products := catalog.NewRepository(db.Querier())
	ledger := inventory.NewPostgresLedger(db.Querier())
	cartService := cart.NewService(cart.NewPostgresStore(db), cart.NewRedisCache(redisClient), products)
	orderStore := orders.NewPostgresStore(db)
	outbox := events.NewPostgresRepository(db.Querier())
	orchestrator := checkout.NewOrchestrator(db, cartService, orders.NewFactory(taxRate), orderStore, ledger, outbox)

	// Outbox poller; disabled when no brokers are configured
	pollerCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()
	var poller *events.Poller
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		poller = events.NewPoller(outbox, strings.Split(brokers, ",")...)
		go poller.Run(pollerCtx)
		log.Printf("Outbox poller publishing to %s", brokers)
	} else {
		log.Println("KAFKA_BROKERS not set, outbox poller disabled")
	}

	strictStatus := getEnv("HTTP_STRICT_STATUS", "false") == "true"
	respond := httpapi.NewResponder(strictStatus)
	cartHandler := httpapi.NewCartHandler(cartService, respond)
	ordersHandler := httpapi.NewOrdersHandler(orchestrator, orderStore, respond)

	srv := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      httpapi.NewRouter(cartHandler, ordersHandler, respond),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on :%s", httpPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	stopPoller()
	if poller != nil {
		if err := poller.Close(); err != nil {
			log.Printf("failed to close outbox poller: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("storefront stopped")
}
