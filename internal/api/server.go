package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/devnazarchuk/sneakers-shop/internal/cart"
	"github.com/devnazarchuk/sneakers-shop/internal/catalog"
	"github.com/devnazarchuk/sneakers-shop/internal/checkout"
	"github.com/devnazarchuk/sneakers-shop/internal/config"
	"github.com/devnazarchuk/sneakers-shop/internal/favorites"
	"github.com/devnazarchuk/sneakers-shop/internal/lifecycle"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/internal/profile"
	"github.com/devnazarchuk/sneakers-shop/internal/scheduler"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

// BreakerReporter exposes the payment gateway client's circuit breaker
// metrics for the admin surface.
type BreakerReporter interface {
	BreakerMetrics() map[string]interface{}
}

// Deps carries the wired application components the server routes to.
// Wiring happens in main so the server stays constructible in tests.
type Deps struct {
	Orders    *orders.Store
	Catalog   *catalog.Provider
	Cart      *cart.Store
	Favorites *favorites.Store
	Profile   *profile.Store
	Checkout  *checkout.Service
	Advancer  *lifecycle.Advancer
	Scheduler *scheduler.Scheduler
	Breaker   BreakerReporter
}

type Server struct {
	config     *config.Config
	logger     logger.Logger
	router     *mux.Router
	httpServer *http.Server
	deps       Deps
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(cfg *config.Config, log logger.Logger, deps Deps) *Server {
	r := mux.NewRouter()

	server := &Server{
		config: cfg,
		logger: log,
		router: r,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps: deps,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.healthCheckHandler).Methods(http.MethodGet)

	api.HandleFunc("/products", s.getProductsHandler).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.getProductByIDHandler).Methods(http.MethodGet)

	api.HandleFunc("/cart", s.getCartHandler).Methods(http.MethodGet)
	api.HandleFunc("/cart", s.clearCartHandler).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", s.addCartItemHandler).Methods(http.MethodPost)
	api.HandleFunc("/cart/items", s.updateCartItemHandler).Methods(http.MethodPatch)
	api.HandleFunc("/cart/items", s.removeCartItemHandler).Methods(http.MethodDelete)

	api.HandleFunc("/favorites", s.getFavoritesHandler).Methods(http.MethodGet)
	api.HandleFunc("/favorites/{id}", s.toggleFavoriteHandler).Methods(http.MethodPost)

	api.HandleFunc("/profile", s.getProfileHandler).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.saveProfileHandler).Methods(http.MethodPut)
	api.HandleFunc("/profile/logout", s.logoutHandler).Methods(http.MethodPost)

	api.HandleFunc("/checkout", s.beginCheckoutHandler).Methods(http.MethodPost)
	api.HandleFunc("/checkout/success", s.checkoutSuccessHandler).Methods(http.MethodGet)
	api.HandleFunc("/checkout/cancel", s.checkoutCancelHandler).Methods(http.MethodPost)

	api.HandleFunc("/orders", s.getOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", s.getOrderByIDHandler).Methods(http.MethodGet)

	api.HandleFunc("/webhooks/gateway", s.gatewayWebhookHandler).Methods(http.MethodPost)

	admin := s.router.PathPrefix("/api/v1/admin").Subrouter()
	admin.HandleFunc("/orders/{id}/advance", s.forceAdvanceHandler).Methods(http.MethodPost)
	admin.HandleFunc("/orders/dedup", s.dedupOrdersHandler).Methods(http.MethodPost)
	admin.HandleFunc("/sweep", s.runSweepHandler).Methods(http.MethodPost)
	admin.HandleFunc("/gateway/breaker", s.getBreakerStatusHandler).Methods(http.MethodGet)
}

// Middleware for logging requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Info("Request processed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"remoteAddr", r.RemoteAddr,
		)
	})
}
