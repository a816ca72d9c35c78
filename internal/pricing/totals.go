package pricing

import (
	"math"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
)

// The shop is EUR-only by convention; all amounts are euros rounded to cents.
const (
	vatRate               = 0.19
	freeShippingThreshold = 100.0
	shippingFlatRate      = 9.99
)

// Totals is the price breakdown fixed at order-creation time. It is never
// recomputed from the items afterwards.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// ComputeTotals maps line items to a price breakdown. Empty items yield
// all-zero totals.
func ComputeTotals(items []models.OrderItem) Totals {
	var subtotal float64

	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	subtotal = round2(subtotal)

	if subtotal == 0 {
		return Totals{}
	}

	tax := round2(subtotal * vatRate)

	shipping := shippingFlatRate

	if subtotal >= freeShippingThreshold {
		shipping = 0
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    round2(subtotal + tax + shipping),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
