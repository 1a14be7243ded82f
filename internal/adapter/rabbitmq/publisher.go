package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

// EventsExchange is the topic exchange every POS event goes through.
const EventsExchange = "pos_events"

type publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) interfaces.EventPublisher {
	return &publisher{conn: conn}
}

func (p *publisher) PublishOrderCreated(ctx context.Context, evt interfaces.OrderEvent) error {
	return p.publish(ctx, interfaces.EventOrderCreated, evt)
}

func (p *publisher) PublishOrderStatus(ctx context.Context, evt interfaces.OrderEvent) error {
	return p.publish(ctx, fmt.Sprintf("%s.%s", interfaces.EventOrderStatus, evt.Status), evt)
}

func (p *publisher) PublishTableStatus(ctx context.Context, evt interfaces.TableEvent) error {
	return p.publish(ctx, fmt.Sprintf("%s.%s", interfaces.EventTableStatus, evt.Status), evt)
}

func (p *publisher) publish(ctx context.Context, routingKey string, msg any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	// Declare exchange
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(ctx, EventsExchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	return nil
}

type nopPublisher struct{}

// NewNopPublisher drops every event. Used when rabbitmq is disabled.
func NewNopPublisher() interfaces.EventPublisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderCreated(context.Context, interfaces.OrderEvent) error { return nil }

func (nopPublisher) PublishOrderStatus(context.Context, interfaces.OrderEvent) error { return nil }

func (nopPublisher) PublishTableStatus(context.Context, interfaces.TableEvent) error { return nil }
