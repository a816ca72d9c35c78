package lifecycle

import (
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
)

// ForceStep advances one order exactly one step along the status table,
// ignoring every time gate. It exists for demos and debugging only; the
// scheduler never calls it. Event timestamps are backdated by a bounded
// random offset so forced histories still read plausibly.
//
// It returns false when the order is unknown or has nowhere left to go.
func (a *Advancer) ForceStep(id string) bool {
	stepped := false

	a.store.Mutate(id, func(order *models.Order) bool {
		now := a.now()

		if order.Status.IsTerminal() || order.Status == models.OrderStatusPending {
			return false
		}

		// 5 to 35 minutes in the past.
		eventTime := now.Add(-time.Duration(5+a.rand.Intn(31)) * time.Minute)

		switch order.Status {
		case models.OrderStatusPaid:
			a.toProcessing(order, eventTime)
		case models.OrderStatusProcessing:
			order.Status = models.OrderStatusShipped
			a.appendEvent(order, eventTime, models.TrackingShipped, "Leipzig Hub, DE", "Shipped")
		case models.OrderStatusShipped:
			switch currentTracking(order) {
			case models.TrackingShipped:
				a.appendEvent(order, eventTime, models.TrackingInTransit, "Frankfurt, DE", "In Transit")
			case models.TrackingInTransit:
				a.appendEvent(order, eventTime, models.TrackingOutForDelivery, "Local Delivery Center", "Out for Delivery")
			case models.TrackingOutForDelivery:
				order.Status = models.OrderStatusDelivered
				a.appendEvent(order, eventTime, models.TrackingDelivered, "Delivery Address", "Delivered")
			default:
				return false
			}
		default:
			return false
		}

		stepped = true
		a.logger.Info("Forced order one step forward", "orderID", order.ID, "status", order.Status)
		return true
	})

	return stepped
}
