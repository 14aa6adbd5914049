package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"tamias/order"
	"tamias/rdx"
)

// CartChannel is the Redis pub/sub channel carrying live cart snapshots
// for customer-facing displays, one logical stream per store.
const CartChannel = "cart-events"

// Emitter publishes cart events to Redis. It satisfies order.Publisher
// and is strictly fire-and-forget: a missing broker or absent subscriber
// never fails the checkout that triggered the event.
type Emitter struct{}

func NewEmitter() *Emitter { return &Emitter{} }

func (e *Emitter) PublishCart(event order.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("mq: failed to marshal cart event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdx.Conn.Publish(ctx, CartChannel, data).Err(); err != nil {
		log.Printf("mq: failed to publish cart event: %v", err)
	}
}

// Subscribe returns a channel of raw cart event payloads. The caller owns
// the subscription lifetime through ctx.
func Subscribe(ctx context.Context) <-chan []byte {
	sub := rdx.Conn.Subscribe(ctx, CartChannel)
	out := make(chan []byte, 64)

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					log.Println("mq: dropping cart event, subscriber is slow")
				}
			}
		}
	}()

	return out
}
