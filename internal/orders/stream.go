package orders

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bitesofsouth/ordering-backend/pkg/logger"
)

// StatusEvent is one live update on an order's status channel.
type StatusEvent struct {
	OrderID     string    `json:"order_id"`
	Progress    int       `json:"progress"`
	OrderStatus string    `json:"order_status"`
	Message     string    `json:"message"`
	DineIn      bool      `json:"dine_in"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Subscription is a live feed of status events for a single order. Callers
// must Close it when done; Updates is closed once the underlying channel
// subscription ends.
type Subscription struct {
	pubsub *goredis.PubSub
	events chan StatusEvent

	closeOnce sync.Once
}

func newSubscription(ctx context.Context, pubsub *goredis.PubSub, log *logger.Logger) *Subscription {
	sub := &Subscription{
		pubsub: pubsub,
		events: make(chan StatusEvent, 8),
	}
	go sub.pump(ctx, log)
	return sub
}

func (s *Subscription) pump(ctx context.Context, log *logger.Logger) {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		var event StatusEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Error(ctx, "dropping undecodable order status event", err)
			continue
		}
		select {
		case s.events <- event:
		case <-ctx.Done():
			return
		}
	}
}

// Updates streams decoded status events until the subscription is closed.
func (s *Subscription) Updates() <-chan StatusEvent {
	return s.events
}

// Close tears down the underlying channel subscription. Safe to call twice.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.pubsub.Close()
	})
	return err
}
