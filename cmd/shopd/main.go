package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/api"
	"github.com/devnazarchuk/sneakers-shop/internal/cart"
	"github.com/devnazarchuk/sneakers-shop/internal/catalog"
	"github.com/devnazarchuk/sneakers-shop/internal/checkout"
	"github.com/devnazarchuk/sneakers-shop/internal/config"
	"github.com/devnazarchuk/sneakers-shop/internal/events"
	"github.com/devnazarchuk/sneakers-shop/internal/favorites"
	"github.com/devnazarchuk/sneakers-shop/internal/gateway"
	"github.com/devnazarchuk/sneakers-shop/internal/lifecycle"
	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/internal/profile"
	"github.com/devnazarchuk/sneakers-shop/internal/scheduler"
	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/internal/tracking"
	"github.com/devnazarchuk/sneakers-shop/pkg/kafka"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.NewLogger(cfg.LogLevel)
	l.Info("Starting storefront server...")

	var kv storage.Store

	if cfg.StorePath != "" {
		sqliteStore, err := storage.OpenSQLite(cfg.StorePath, l)

		if err != nil {
			l.Error("Failed to open store", "path", cfg.StorePath, "error", err)
			os.Exit(1)
		}

		defer sqliteStore.Close()
		kv = sqliteStore
	} else {
		l.Warn("No store path configured, state will not survive restarts")
		kv = storage.NewMemoryStore()
	}

	provider, err := catalog.Load(cfg.CatalogPath, l)

	if err != nil {
		l.Error("Failed to load product catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}

	orderStore := orders.NewStore(kv, l)
	cartStore := cart.NewStore(kv, l)
	favStore := favorites.NewStore(kv, l)
	profileStore := profile.NewStore(kv, l)

	gatewayClient := gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, l)
	tracker := checkout.NewTracker(kv, orderStore, cfg.AbandonWindow, l, nil)
	checkoutService := checkout.NewService(orderStore, cartStore, profileStore, provider, gatewayClient, tracker, cfg.Gateway, l)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gen := tracking.NewGenerator(rng, models.GetCurrentTime)
	advancer := lifecycle.NewAdvancer(orderStore, gen, l, models.GetCurrentTime)

	sched := scheduler.New(orderStore, advancer, cfg.SweepInterval, l)
	sched.Start()
	defer sched.Stop()

	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, l)

		if err != nil {
			l.Error("Failed to create Kafka producer, relay disabled", "error", err)
		} else {
			defer producer.Close()

			relay := events.NewRelay(producer, cfg.Kafka.OrdersTopic, l)
			relay.Start(orderStore)
			defer relay.Stop()
		}
	}

	server := api.NewServer(cfg, l, api.Deps{
		Orders:    orderStore,
		Catalog:   provider,
		Cart:      cartStore,
		Favorites: favStore,
		Profile:   profileStore,
		Checkout:  checkoutService,
		Advancer:  advancer,
		Scheduler: sched,
		Breaker:   gatewayClient,
	})

	go func() {
		l.Info(fmt.Sprintf("Server is starting on port %d", cfg.Port))

		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			l.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		l.Error("Server forced to shutdown", "error", err)
	} else {
		l.Info("Server exiting")
	}
}
