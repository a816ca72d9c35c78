package tracking

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
)

// carriers is the fixed carrier vocabulary, weighted so DHL shows up for
// roughly 3 of 7 orders. The DHL bias keeps the external tracking-link
// feature demonstrable with realistic frequency.
var carriers = []struct {
	name   string
	weight int
}{
	{"DHL", 3},
	{"UPS", 1},
	{"FedEx", 1},
	{"Hermes", 1},
	{"DPD", 1},
}

const alphanum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator produces synthetic carrier and tracking metadata. Randomness and
// time come in through the constructor so tests can pin both.
type Generator struct {
	rand *rand.Rand
	now  func() time.Time
}

// NewGenerator creates a Generator. A nil now defaults to UTC wall-clock time.
func NewGenerator(r *rand.Rand, now func() time.Time) *Generator {
	if now == nil {
		now = models.GetCurrentTime
	}

	return &Generator{rand: r, now: now}
}

// Generate builds TrackingInfo for an order. When the order has already
// progressed past processing, the missing earlier milestones are seeded too,
// so lazily created tracking converges on the same shape as tracking that
// grew step by step.
func (g *Generator) Generate(order *models.Order) *models.TrackingInfo {
	now := g.now()

	info := &models.TrackingInfo{
		TrackingNumber:    g.trackingNumber(now),
		Carrier:           g.pickCarrier(),
		EstimatedDelivery: now.Add(time.Duration(3+g.rand.Intn(5)) * 24 * time.Hour),
		CurrentStatus:     statusFor(order.Status),
		LastUpdate:        now,
	}

	info.AppendEvent(models.TrackingEvent{
		Date:        order.Date,
		Status:      models.TrackingProcessing,
		Location:    "Berlin, DE",
		Description: "Order Confirmed",
	})

	if order.Status == models.OrderStatusShipped || order.Status == models.OrderStatusDelivered {
		info.AppendEvent(models.TrackingEvent{
			Date:        order.Date.Add(4 * time.Hour),
			Status:      models.TrackingShipped,
			Location:    "Leipzig Hub, DE",
			Description: "Shipped",
		})
	}

	if order.Status == models.OrderStatusDelivered {
		info.AppendEvent(models.TrackingEvent{
			Date:        now,
			Status:      models.TrackingDelivered,
			Location:    "Delivery Address",
			Description: "Delivered",
		})
	}

	return info
}

// trackingNumber builds an opaque identifier from a time-derived numeric part
// and a short random tag. Uniqueness is probabilistic; tracking numbers are
// cosmetic here.
func (g *Generator) trackingNumber(now time.Time) string {
	tag := make([]byte, 4)

	for i := range tag {
		tag[i] = alphanum[g.rand.Intn(len(alphanum))]
	}

	return fmt.Sprintf("TRK%d%s", now.UnixMilli()%1_000_000_000, tag)
}

func (g *Generator) pickCarrier() string {
	total := 0

	for _, c := range carriers {
		total += c.weight
	}

	n := g.rand.Intn(total)

	for _, c := range carriers {
		if n < c.weight {
			return c.name
		}
		n -= c.weight
	}

	return carriers[0].name
}

// statusFor maps an order status onto the shipment status used when tracking
// is first generated.
func statusFor(status models.OrderStatus) models.TrackingStatus {
	switch status {
	case models.OrderStatusShipped:
		return models.TrackingShipped
	case models.OrderStatusDelivered:
		return models.TrackingDelivered
	default:
		return models.TrackingProcessing
	}
}
