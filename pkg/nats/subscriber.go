package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"smart-search-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc   *nats.Conn
	js   jetstream.JetStream
	subs []jetstream.ConsumeContext
}

func NewSubscriber(url string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe attaches handler to eventType ("*" for all) using a durable
// consumer. An empty durableName creates an ephemeral consumer.
func (s *Subscriber) Subscribe(ctx context.Context, eventType, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: Subject(eventType),
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data(), &env); err != nil {
			log.Printf("Error unmarshalling event data: %v", err)
			_ = msg.Term()
			return
		}

		event := events.BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}
		if err := handler(ctx, event); err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.subs = append(s.subs, cc)

	log.Printf("Subscribed to %s (durable=%q)", Subject(eventType), durableName)
	return nil
}

// Close stops all consumers and closes the connection.
func (s *Subscriber) Close() {
	for _, cc := range s.subs {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
