package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/cart"
	"github.com/devnazarchuk/sneakers-shop/internal/catalog"
	"github.com/devnazarchuk/sneakers-shop/internal/checkout"
	"github.com/devnazarchuk/sneakers-shop/internal/config"
	"github.com/devnazarchuk/sneakers-shop/internal/favorites"
	"github.com/devnazarchuk/sneakers-shop/internal/gateway"
	"github.com/devnazarchuk/sneakers-shop/internal/lifecycle"
	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/internal/profile"
	"github.com/devnazarchuk/sneakers-shop/internal/scheduler"
	"github.com/devnazarchuk/sneakers-shop/internal/storage"
	"github.com/devnazarchuk/sneakers-shop/internal/tracking"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

type stubGateway struct{}

func (stubGateway) CreateSession(ctx context.Context, req *gateway.CreateSessionRequest) (*gateway.CheckoutSession, error) {
	return &gateway.CheckoutSession{
		SessionID:   "cs_stub",
		RedirectURL: "https://pay.example/cs_stub",
	}, nil
}

type testServer struct {
	server *Server
	orders *orders.Store
	cart   *cart.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.Nop()
	kv := storage.NewMemoryStore()
	orderStore := orders.NewStore(kv, log)
	cartStore := cart.NewStore(kv, log)
	favStore := favorites.NewStore(kv, log)
	profileStore := profile.NewStore(kv, log)
	provider := catalog.NewProvider([]catalog.Product{
		{ID: 1, Title: "Samba OG", Brand: "Adidas", Price: 99.99, Images: []string{"/img/samba.jpg"}},
		{ID: 2, Title: "Air Force 1", Brand: "Nike", Price: 119.99},
	}, log)

	now := time.Now().UTC
	gen := tracking.NewGenerator(rand.New(rand.NewSource(1)), now)
	advancer := lifecycle.NewAdvancer(orderStore, gen, log, now)
	tracker := checkout.NewTracker(kv, orderStore, 10*time.Minute, log, nil)
	service := checkout.NewService(orderStore, cartStore, profileStore, provider, stubGateway{}, tracker, config.GatewayConfig{}, log)
	sched := scheduler.New(orderStore, advancer, time.Hour, log)

	cfg := &config.Config{Port: 8080}

	return &testServer{
		server: NewServer(cfg, log, Deps{
			Orders:    orderStore,
			Catalog:   provider,
			Cart:      cartStore,
			Favorites: favStore,
			Profile:   profileStore,
			Checkout:  service,
			Advancer:  advancer,
			Scheduler: sched,
		}),
		orders: orderStore,
		cart:   cartStore,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.server.router.ServeHTTP(rec, req)

	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) ApiResponse {
	t.Helper()

	var resp ApiResponse

	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return resp
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decodeResponse(t, rec); !resp.Success {
		t.Error("health check not successful")
	}
}

func TestGetProducts(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/products", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetProductByIDNotFound(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(t, http.MethodGet, "/api/v1/products/99", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/v1/products/abc", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCartRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", cartItemRequest{ProductID: 1, Size: "42", Quantity: 2})

	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want 201", rec.Code)
	}

	items := ts.cart.Items()

	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("cart after add = %+v", items)
	}
	if items[0].Price != 99.99 || items[0].Title != "Samba OG" {
		t.Errorf("cart line not enriched from catalog: %+v", items[0])
	}

	ts.do(t, http.MethodPatch, "/api/v1/cart/items", cartItemRequest{ProductID: 1, Size: "42", Quantity: 5})

	if items := ts.cart.Items(); items[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", items[0].Quantity)
	}

	ts.do(t, http.MethodDelete, "/api/v1/cart/items", cartItemRequest{ProductID: 1, Size: "42"})

	if items := ts.cart.Items(); len(items) != 0 {
		t.Errorf("cart after remove = %+v", items)
	}
}

func TestAddUnknownProductToCart(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", cartItemRequest{ProductID: 42}); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestFavoritesToggle(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPost, "/api/v1/favorites/1", nil)
	ts.do(t, http.MethodPost, "/api/v1/favorites/2", nil)
	ts.do(t, http.MethodPost, "/api/v1/favorites/1", nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/favorites", nil)
	resp := decodeResponse(t, rec)
	ids, ok := resp.Data.([]interface{})

	if !ok || len(ids) != 1 {
		t.Fatalf("favorites = %v, want exactly one id", resp.Data)
	}
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPost, "/api/v1/cart/items", cartItemRequest{ProductID: 2, Size: "43", Quantity: 1})

	rec := ts.do(t, http.MethodPost, "/api/v1/checkout", nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout status = %d, body %s", rec.Code, rec.Body.String())
	}

	if _, ok := ts.orders.GetBySessionID("cs_stub"); !ok {
		t.Fatal("no pending order recorded for the session")
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/checkout/success?session_id=cs_stub", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("success status = %d", rec.Code)
	}

	order, _ := ts.orders.GetBySessionID("cs_stub")

	if order.Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want paid", order.Status)
	}
	if items := ts.cart.Items(); len(items) != 0 {
		t.Errorf("cart not cleared after success, %d lines left", len(items))
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(t, http.MethodPost, "/api/v1/checkout", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetOrderFallsBackToSessionID(t *testing.T) {
	ts := newTestServer(t)

	order := models.NewOrder("", nil, nil)
	order.SessionID = "cs_abc"
	ts.orders.Save(*order)

	rec := ts.do(t, http.MethodGet, "/api/v1/orders/cs_abc", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 via session id lookup", rec.Code)
	}
	if rec := ts.do(t, http.MethodGet, "/api/v1/orders/nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGatewayWebhook(t *testing.T) {
	ts := newTestServer(t)

	order := models.NewOrder("cs_hook", nil, nil)
	ts.orders.Save(*order)

	payload := map[string]interface{}{
		"type":       gateway.EventPaymentSucceeded,
		"session_id": "cs_hook",
	}

	if rec := ts.do(t, http.MethodPost, "/api/v1/webhooks/gateway", payload); rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d", rec.Code)
	}

	got, _ := ts.orders.GetBySessionID("cs_hook")

	if got.Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want paid", got.Status)
	}

	if rec := ts.do(t, http.MethodPost, "/api/v1/webhooks/gateway", map[string]string{"type": "mystery"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad webhook status = %d, want 400", rec.Code)
	}
}

func TestForceAdvanceRefusesPendingOrder(t *testing.T) {
	ts := newTestServer(t)

	order := models.NewOrder("cs_demo", nil, nil)
	ts.orders.Save(*order)

	if rec := ts.do(t, http.MethodPost, "/api/v1/admin/orders/cs_demo/advance", nil); rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 for pending order", rec.Code)
	}

	ts.orders.UpdateStatus("cs_demo", models.OrderStatusPaid)

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/orders/cs_demo/advance", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for paid order", rec.Code)
	}

	got, _ := ts.orders.GetByID("cs_demo")

	if got.Status != models.OrderStatusProcessing {
		t.Errorf("status = %s, want processing", got.Status)
	}
}

func TestLogoutWipesEverything(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodPost, "/api/v1/cart/items", cartItemRequest{ProductID: 1})
	ts.orders.Save(*models.NewOrder("cs_gone", nil, nil))

	if rec := ts.do(t, http.MethodPost, "/api/v1/profile/logout", nil); rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}

	if got := ts.orders.GetAll(); len(got) != 0 {
		t.Errorf("orders survived logout: %d", len(got))
	}
	if items := ts.cart.Items(); len(items) != 0 {
		t.Errorf("cart survived logout: %d lines", len(items))
	}

	if rec := ts.do(t, http.MethodGet, "/api/v1/admin/gateway/breaker", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("breaker status = %d, want 503 with no gateway client", rec.Code)
	}
}
