package models

import (
	"time"
)

// TrackingStatus is the shipment-level status. in_transit and
// out_for_delivery are sub-states of the order-level shipped status.
type TrackingStatus string

const (
	TrackingProcessing     TrackingStatus = "processing"
	TrackingShipped        TrackingStatus = "shipped"
	TrackingInTransit      TrackingStatus = "in_transit"
	TrackingOutForDelivery TrackingStatus = "out_for_delivery"
	TrackingDelivered      TrackingStatus = "delivered"
)

// TrackingEvent is one append-only timestamped milestone in a shipment's
// progress.
type TrackingEvent struct {
	Date        time.Time      `json:"date"`
	Status      TrackingStatus `json:"status"`
	Location    string         `json:"location"`
	Description string         `json:"description"`
}

// TrackingInfo is attached to an order once it enters processing. Events only
// ever grow; they are never reordered or pruned.
type TrackingInfo struct {
	TrackingNumber    string          `json:"trackingNumber"`
	Carrier           string          `json:"carrier"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	CurrentStatus     TrackingStatus  `json:"currentStatus"`
	LastUpdate        time.Time       `json:"lastUpdate"`
	Events            []TrackingEvent `json:"events"`
}

// AppendEvent records a milestone and keeps CurrentStatus consistent with the
// most recent event.
func (t *TrackingInfo) AppendEvent(ev TrackingEvent) {
	t.Events = append(t.Events, ev)
	t.CurrentStatus = ev.Status
	t.LastUpdate = ev.Date
}
