package gateway

import (
	"encoding/json"
	"fmt"
)

// Webhook event types delivered by the gateway.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventPaymentSucceeded  = "payment.succeeded"
	EventPaymentFailed     = "payment.failed"
)

// WebhookEvent is the gateway's asynchronous payment outcome, correlated by
// session id.
type WebhookEvent struct {
	Type          string  `json:"type"`
	SessionID     string  `json:"session_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	ItemsMeta     string  `json:"items_meta"`
	CustomerEmail string  `json:"customer_email,omitempty"`
}

// ParseWebhookEvent decodes and minimally validates a webhook payload.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent

	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	if event.SessionID == "" {
		return nil, fmt.Errorf("webhook payload missing session_id")
	}

	switch event.Type {
	case EventCheckoutCompleted, EventCheckoutExpired, EventPaymentSucceeded, EventPaymentFailed:
	default:
		return nil, fmt.Errorf("unknown webhook event type %q", event.Type)
	}

	return &event, nil
}

// Succeeded reports whether the event carries a successful payment outcome.
func (e *WebhookEvent) Succeeded() bool {
	return e.Type == EventCheckoutCompleted || e.Type == EventPaymentSucceeded
}
