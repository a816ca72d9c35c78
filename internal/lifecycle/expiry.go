package lifecycle

import (
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
)

// pendingTTL is how long a pending order may sit before it is considered
// abandoned at the store level.
const pendingTTL = 5 * time.Minute

// SweepExpired demotes stale pending orders to expired. Safe to call at any
// frequency from any surface; already-expired orders are untouched. Returns
// the number of orders expired.
func (a *Advancer) SweepExpired() int {
	expired := 0

	for _, o := range a.store.GetAll() {
		if o.Status != models.OrderStatusPending {
			continue
		}

		a.store.Mutate(o.ID, func(order *models.Order) bool {
			now := a.now()

			if order.Status != models.OrderStatusPending || now.Sub(order.Date) <= pendingTTL {
				return false
			}

			order.Status = models.OrderStatusExpired
			order.UpdatedAt = now
			expired++

			a.logger.Info("Expired stale pending order", "orderID", order.ID)
			return true
		})
	}

	return expired
}
