package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
	"github.com/devnazarchuk/sneakers-shop/internal/orders"
	"github.com/devnazarchuk/sneakers-shop/pkg/kafka"
	"github.com/devnazarchuk/sneakers-shop/pkg/logger"
)

const publishTimeout = 5 * time.Second

// OrderChangeEvent is the message published whenever the order
// collection changes. It carries the full status breakdown so
// downstream consumers never need to diff snapshots themselves.
type OrderChangeEvent struct {
	OrderCount int            `json:"orderCount"`
	Statuses   map[string]int `json:"statuses"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Relay forwards order collection changes from the store's change
// feed to a Kafka topic. Publishing is best effort: a broker failure
// is logged and the change is dropped, it never blocks the store.
type Relay struct {
	producer *kafka.Producer
	topic    string
	logger   logger.Logger
	unsub    func()
}

func NewRelay(producer *kafka.Producer, topic string, log logger.Logger) *Relay {
	return &Relay{
		producer: producer,
		topic:    topic,
		logger:   log,
	}
}

// Start subscribes the relay to the store's change feed.
func (r *Relay) Start(store *orders.Store) {
	r.unsub = store.Subscribe(r.publish)
	r.logger.Info("Order event relay started", "topic", r.topic)
}

// Stop detaches the relay from the change feed.
func (r *Relay) Stop() {
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}

	r.logger.Info("Order event relay stopped")
}

func (r *Relay) publish(snapshot []models.Order) {
	event := OrderChangeEvent{
		OrderCount: len(snapshot),
		Statuses:   make(map[string]int),
		OccurredAt: time.Now().UTC(),
	}

	for _, o := range snapshot {
		event.Statuses[string(o.Status)]++
	}

	payload, err := json.Marshal(event)

	if err != nil {
		r.logger.Error("Failed to marshal order change event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := r.producer.SendMessage(ctx, r.topic, "orders", payload); err != nil {
		r.logger.Error("Failed to publish order change event", "topic", r.topic, "error", err)
		return
	}

	r.logger.Debug("Published order change event", "orders", event.OrderCount)
}
