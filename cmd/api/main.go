package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/order-service/internal/api"
	"github.com/example/order-service/internal/auth"
	"github.com/example/order-service/internal/cache"
	"github.com/example/order-service/internal/config"
	"github.com/example/order-service/internal/inventory"
	"github.com/example/order-service/internal/kafka"
	"github.com/example/order-service/internal/orders"
	"github.com/example/order-service/internal/products"
	"github.com/example/order-service/internal/retry"
	"github.com/example/order-service/internal/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	if err := cfg.ValidateJWT(); err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] Order fulfillment service starting")
	log.Printf("[API] Kafka: %v topic=%s", cfg.KafkaBrokers, cfg.KafkaTopic)
	log.Printf("[API] Redis: %s", cfg.RedisAddr)

	// PostgreSQL: system of record.
	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	if err := store.EnsureSchema(db); err != nil {
		log.Fatalf("[API] Failed to ensure schema: %v", err)
	}
	log.Println("[API] Connected to PostgreSQL")

	// Redis: cache-aside projection store. A failed ping is logged, not
	// fatal; the service runs degraded against the system of record.
	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.Printf("[API] Redis unavailable, running degraded: %v", err)
	}

	// Kafka producer: dial under the connect budget. If the budget is
	// exhausted, orders still commit and events are reported dropped.
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()
	if err := producer.Start(ctx, retry.Policy{
		MaxAttempts: cfg.ProducerMaxAttempts,
		Interval:    cfg.ProducerRetryDelay,
	}); err != nil {
		log.Printf("[API] Kafka unavailable, events will be dropped: %v", err)
	}

	// Stores and services.
	ledger := inventory.NewLedger()
	orderStore := store.NewPostgresOrderStore(db, ledger)
	productStore := store.NewPostgresProductStore(db, ledger)
	userStore := store.NewPostgresUserStore(db)

	orderSvc := orders.NewService(orderStore, productStore, redisCache, producer, cfg.CacheTTL)
	productSvc := products.NewService(productStore, redisCache, cfg.CacheTTL)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)

	handlers := api.NewHandlers(orderSvc, productSvc)
	authHandlers := api.NewAuthHandlers(userStore, jwtService)
	router := api.NewRouter(handlers, authHandlers, jwtService)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}
