package models

import (
	"time"
)

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusExpired    OrderStatus = "expired"
)

// IsTerminal reports whether no further transition may leave the status.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusFailed, OrderStatusExpired:
		return true
	}
	return false
}

// CancellationReason classifies how an abandonment was detected.
type CancellationReason string

const (
	CancelledNavigationAway CancellationReason = "navigation_away"
	CancelledPageUnload     CancellationReason = "page_unload"
	CancelledBackNavigation CancellationReason = "back_navigation"
	CancelledTimeout        CancellationReason = "timeout"
)

// OrderItem is one purchased line. Items are immutable once the order is
// created, except that images may be back-filled later from the local catalog
// when a webhook-sourced order arrived without them.
type OrderItem struct {
	ProductID int      `json:"productId"`
	Title     string   `json:"title"`
	Brand     string   `json:"brand"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	Images    []string `json:"images"`
}

// CustomerInfo is the optional contact block attached to an order.
type CustomerInfo struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Order is one checkout attempt's durable record, independent of whether
// payment succeeded.
type Order struct {
	ID                 string             `json:"id"`
	SessionID          string             `json:"sessionId,omitempty"`
	Date               time.Time          `json:"date"`
	UpdatedAt          time.Time          `json:"updatedAt"`
	Items              []OrderItem        `json:"items"`
	Subtotal           float64            `json:"subtotal"`
	Tax                float64            `json:"tax"`
	Shipping           float64            `json:"shipping"`
	Total              float64            `json:"total"`
	Status             OrderStatus        `json:"status"`
	CustomerInfo       *CustomerInfo      `json:"customerInfo,omitempty"`
	CancellationReason CancellationReason `json:"cancellationReason,omitempty"`
	Tracking           *TrackingInfo      `json:"tracking,omitempty"`
}

// NewOrder creates a pending order. When sessionID is set it doubles as the
// order id, which keeps client-created and webhook-written records correlated
// by one canonical key.
func NewOrder(sessionID string, items []OrderItem, customer *CustomerInfo) *Order {
	now := GetCurrentTime()

	id := sessionID

	if id == "" {
		id = GenerateOrderID()
	}

	return &Order{
		ID:           id,
		SessionID:    sessionID,
		Date:         now,
		UpdatedAt:    now,
		Items:        items,
		Status:       OrderStatusPending,
		CustomerInfo: customer,
	}
}
