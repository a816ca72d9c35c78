package checkout

import (
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
)

// Signal is the navigation-boundary event that triggered a reconcile pass.
type Signal string

const (
	SignalPageHide       Signal = "page_hide"
	SignalBackNavigation Signal = "back_navigation"
	SignalFocusReturn    Signal = "focus_return"
	SignalCancelPage     Signal = "cancel_page"
)

// ReferrerCategory is a coarse classification of where the navigation came
// from.
type ReferrerCategory string

const (
	ReferrerPayment  ReferrerCategory = "payment"  // returning from the gateway's domain
	ReferrerInternal ReferrerCategory = "internal" // another page of the shop
	ReferrerUnknown  ReferrerCategory = "unknown"
)

// IsAbandonment decides whether a navigation signal means the user walked
// away from an in-flight payment. It is a heuristic: there is no
// server-confirmed "left the payment page" event, only timing and referrer
// sniffing, so false positives are possible and accepted.
func IsAbandonment(now, startedAt time.Time, window time.Duration, referrer ReferrerCategory) bool {
	if startedAt.IsZero() {
		return false
	}

	elapsed := now.Sub(startedAt)

	if elapsed < 0 || elapsed > window {
		return false
	}

	return referrer == ReferrerPayment
}

// reasonFor maps the triggering signal onto the recorded cancellation reason.
func reasonFor(signal Signal) models.CancellationReason {
	switch signal {
	case SignalPageHide:
		return models.CancelledPageUnload
	case SignalBackNavigation:
		return models.CancelledBackNavigation
	case SignalCancelPage:
		return models.CancelledTimeout
	default:
		return models.CancelledNavigationAway
	}
}
