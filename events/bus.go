// Package events carries the storefront's in-page signaling: cart mutations
// and panel-open requests are published here and fanned out to browsers over
// SSE, so navigation chrome stays in sync with cart state without a shared
// in-memory store.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

type Type string

const (
	TypeCartChanged Type = "cart:changed"
	TypeCartOpen    Type = "cart:open"
)

type Event struct {
	Type      Type      `json:"type"`
	ItemCount int       `json:"item_count,omitempty"`
	At        time.Time `json:"at"`
}

// Bus is a Redis pub/sub fan-out. Publishing is best effort: a failed
// publish is logged and the cart mutation that triggered it still stands.
type Bus struct {
	client  *redis.Client
	channel string
}

func NewBus(redisURL, channel string) (*Bus, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %v", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &Bus{client: client, channel: channel}, nil
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %v", err)
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %v", err)
	}
	return nil
}

// CartChanged implements store.Notifier.
func (b *Bus) CartChanged(ctx context.Context, itemCount int) {
	if err := b.Publish(ctx, Event{Type: TypeCartChanged, ItemCount: itemCount}); err != nil {
		log.Printf("Warning: failed to publish cart change: %v", err)
	}
}

// Subscribe returns a channel of events plus a cancel function. The channel
// closes when the context ends or cancel is called.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, func()) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	out := make(chan Event)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Warning: failed to unmarshal event: %v", err)
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("Warning: failed to close subscription: %v", err)
		}
	}
}

func (b *Bus) Client() *redis.Client {
	return b.client
}

func (b *Bus) Close() error {
	return b.client.Close()
}
