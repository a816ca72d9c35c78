package lifecycle

import (
	"math/rand"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/internal/tracking"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

// graceWindow is how long after creation an order is left alone entirely,
// so a sweep never races the checkout-completion webhook.
const graceWindow = 10 * time.Minute

// Advancer is the time-driven state machine that walks paid orders through
// the shipment pipeline. Sweeps are idempotent: when no gate is met a sweep
// is a no-op, so overlapping timers in different call sites are harmless.
type Advancer struct {
	store  *orders.Store
	gen    *tracking.Generator
	logger logger.Logger
	now    func() time.Time
	rand   *rand.Rand
}

// NewAdvancer creates an Advancer. A nil now defaults to UTC wall-clock time.
func NewAdvancer(store *orders.Store, gen *tracking.Generator, log logger.Logger, now func() time.Time) *Advancer {
	if now == nil {
		now = models.GetCurrentTime
	}

	return &Advancer{
		store:  store,
		gen:    gen,
		logger: log,
		now:    now,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sweep runs one pass over the full collection and fires at most one
// transition per order. It returns the number of transitions fired.
func (a *Advancer) Sweep() int {
	advanced := 0

	for _, o := range a.store.GetAll() {
		id := o.ID

		a.store.Mutate(id, func(order *models.Order) bool {
			now := a.now()

			if !a.advanceOne(order, now) {
				return false
			}

			advanced++
			a.logger.Info("Advanced order",
				"orderID", order.ID,
				"status", order.Status,
				"trackingStatus", order.Tracking.CurrentStatus)
			return true
		})
	}

	return advanced
}

// advanceOne applies the first satisfied row of the gate table to the order.
// The rows are evaluated top to bottom, so a heavily time-lapsed order moves
// one step per sweep, not several.
func (a *Advancer) advanceOne(o *models.Order, now time.Time) bool {
	sinceDate := now.Sub(o.Date)

	if sinceDate < graceWindow {
		return false
	}

	if o.Status.IsTerminal() {
		return false
	}

	sinceUpdate := now.Sub(o.UpdatedAt)

	switch o.Status {
	case models.OrderStatusPaid:
		if sinceDate >= 10*time.Minute && sinceUpdate >= 10*time.Minute {
			a.toProcessing(o, now)
			return true
		}

	case models.OrderStatusProcessing:
		if sinceDate >= 4*time.Hour && sinceUpdate >= 4*time.Hour {
			o.Status = models.OrderStatusShipped
			a.appendEvent(o, now, models.TrackingShipped, "Leipzig Hub, DE", "Shipped")
			return true
		}

	case models.OrderStatusShipped:
		switch currentTracking(o) {
		case models.TrackingShipped:
			if sinceDate >= 24*time.Hour && sinceUpdate >= 12*time.Hour {
				a.appendEvent(o, now, models.TrackingInTransit, "Frankfurt, DE", "In Transit")
				return true
			}
		case models.TrackingInTransit:
			if sinceDate >= 48*time.Hour && sinceUpdate >= 24*time.Hour {
				a.appendEvent(o, now, models.TrackingOutForDelivery, "Local Delivery Center", "Out for Delivery")
				return true
			}
		case models.TrackingOutForDelivery:
			if sinceDate >= 72*time.Hour && sinceUpdate >= 24*time.Hour {
				o.Status = models.OrderStatusDelivered
				a.appendEvent(o, now, models.TrackingDelivered, "Delivery Address", "Delivered")
				return true
			}
		}
	}

	return false
}

// toProcessing fires the paid-to-processing transition. Absent tracking is
// created through the generator so the lazy path and the inline path converge
// on the same shape; existing tracking has its events reset to the single
// fresh confirmation.
func (a *Advancer) toProcessing(o *models.Order, now time.Time) {
	o.Status = models.OrderStatusProcessing

	if o.Tracking == nil {
		o.Tracking = a.gen.Generate(o)
		o.UpdatedAt = now
		return
	}

	o.Tracking.Events = nil
	a.appendEvent(o, now, models.TrackingProcessing, "Berlin, DE", "Order Confirmed")
}

func (a *Advancer) appendEvent(o *models.Order, date time.Time, status models.TrackingStatus, location, description string) {
	if o.Tracking == nil {
		o.Tracking = a.gen.Generate(o)
	}

	o.Tracking.AppendEvent(models.TrackingEvent{
		Date:        date,
		Status:      status,
		Location:    location,
		Description: description,
	})
	o.UpdatedAt = date
}

// currentTracking reads the shipment sub-status, defaulting to shipped for a
// shipped order whose tracking is somehow missing.
func currentTracking(o *models.Order) models.TrackingStatus {
	if o.Tracking == nil {
		return models.TrackingShipped
	}

	return o.Tracking.CurrentStatus
}
