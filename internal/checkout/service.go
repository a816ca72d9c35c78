package checkout

import (
	"context"
	"fmt"

	"github.com/devnazarchuk/sneakers-shop/internal/cart"
	"github.com/devnazarchuk/sneakers-shop/internal/catalog"
	"github.com/devnazarchuk/sneakers-shop/internal/config"
	"github.com/devnazarchuk/sneakers-shop/internal/gateway"
	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/notify"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/internal/pricing"
	"github.com/devnazarchuk/sneakers-shop/internal/profile"
	"github.com/devnazarchuk/sneakers-shop/pkg/errors"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

// Service orchestrates the checkout flow: cart to pending order to hosted
// payment redirect, and the webhook writes coming back.
type Service struct {
	store   *orders.Store
	cart    *cart.Store
	profile *profile.Store
	catalog *catalog.Provider
	client  gateway.Client
	tracker *Tracker
	logger  logger.Logger
	notices notify.Notifier
	cfg     config.GatewayConfig
}

// NewService creates a checkout service.
func NewService(
	store *orders.Store,
	cartStore *cart.Store,
	profileStore *profile.Store,
	catalogProvider *catalog.Provider,
	client gateway.Client,
	tracker *Tracker,
	cfg config.GatewayConfig,
	log logger.Logger,
) *Service {
	return &Service{
		store:   store,
		cart:    cartStore,
		profile: profileStore,
		catalog: catalogProvider,
		client:  client,
		tracker: tracker,
		logger:  log,
		notices: notify.NewLogNotifier(log),
		cfg:     cfg,
	}
}

// BeginResult is handed to the UI to perform the redirect.
type BeginResult struct {
	SessionID   string  `json:"sessionId"`
	RedirectURL string  `json:"redirectUrl"`
	Total       float64 `json:"total"`
}

// Begin turns the cart into a pending order and opens a gateway session. The
// order id equals the session id, which is the canonical correlation key for
// everything that follows.
func (s *Service) Begin(ctx context.Context) (*BeginResult, error) {
	items := s.cart.Items()

	if len(items) == 0 {
		return nil, errors.NewInvalidInputError("cart is empty")
	}

	totals := pricing.ComputeTotals(items)

	var customer *models.CustomerInfo

	if info, ok := s.profile.Get(); ok {
		customer = &info
	}

	req := &gateway.CreateSessionRequest{
		Amount:     totals.Total,
		Currency:   "eur",
		ItemsMeta:  gateway.EncodeItemsMeta(items),
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	}

	if customer != nil {
		req.CustomerEmail = customer.Email
	}

	session, err := s.client.CreateSession(ctx, req)

	if err != nil {
		s.notices.Notify("Payment could not be started, please try again")
		return nil, fmt.Errorf("failed to open checkout session: %w", err)
	}

	order := models.NewOrder(session.SessionID, items, customer)
	order.Subtotal = totals.Subtotal
	order.Tax = totals.Tax
	order.Shipping = totals.Shipping
	order.Total = totals.Total

	s.store.Save(*order)
	s.tracker.Begin(session.SessionID, session.RedirectURL, *order)

	s.logger.Info("Checkout session opened",
		"sessionID", session.SessionID,
		"items", len(items),
		"total", totals.Total)

	return &BeginResult{
		SessionID:   session.SessionID,
		RedirectURL: session.RedirectURL,
		Total:       totals.Total,
	}, nil
}

// CompleteSuccess is the success-page boundary: flips the session's order to
// paid and empties the cart.
func (s *Service) CompleteSuccess(sessionID string) bool {
	if !s.tracker.Complete(sessionID) {
		return false
	}

	s.cart.Clear()
	return true
}

// Cancel is the cancel-page boundary.
func (s *Service) Cancel(signal Signal, referrer ReferrerCategory) bool {
	cancelled := s.tracker.Reconcile(signal, referrer)

	if cancelled {
		s.notices.Notify("Your order was cancelled", "signal", signal)
	}

	return cancelled
}

// HandleWebhook reconciles a gateway callback into the order store. Webhook
// and client writes for the same session upsert into one record; last write
// wins and no error is raised on duplicates.
func (s *Service) HandleWebhook(event *gateway.WebhookEvent) {
	status := models.OrderStatusFailed

	if event.Succeeded() {
		status = models.OrderStatusPaid
	}

	if existing, ok := s.store.GetBySessionID(event.SessionID); ok {
		s.store.UpdateStatus(existing.ID, status)
		s.logger.Info("Webhook updated existing order",
			"sessionID", event.SessionID,
			"status", status)
		return
	}

	// No local record: the webhook arrived on a fresh profile or beat the
	// client write. Rebuild the order from the echoed metadata; images do
	// not survive the gateway and are merged back from the catalog.
	items := s.catalog.MergeImages(gateway.DecodeItemsMeta(event.ItemsMeta))

	if len(items) == 0 {
		s.logger.Warn("Webhook carried no reconstructible items, skipping",
			"sessionID", event.SessionID,
			"type", event.Type)
		return
	}

	order := models.NewOrder(event.SessionID, items, nil)
	totals := pricing.ComputeTotals(items)
	order.Subtotal = totals.Subtotal
	order.Tax = totals.Tax
	order.Shipping = totals.Shipping
	order.Total = totals.Total
	order.Status = status

	if event.CustomerEmail != "" {
		order.CustomerInfo = &models.CustomerInfo{Email: event.CustomerEmail}
	}

	s.store.Save(*order)
	s.logger.Info("Webhook created order", "sessionID", event.SessionID, "status", status)
}
