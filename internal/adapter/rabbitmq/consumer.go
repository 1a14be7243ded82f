package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

const reconnectDelay = 5 * time.Second

type consumer struct {
	conn     Connection
	prefetch int
	bindKey  string
	logger   logger.Logger
	delay    time.Duration
}

// NewConsumer consumes every event whose routing key matches bindKey ("#"
// for all) through a temporary exclusive queue.
func NewConsumer(conn Connection, prefetch int, bindKey string, lgr logger.Logger) interfaces.EventConsumer {
	if bindKey == "" {
		bindKey = "#"
	}
	return &consumer{conn: conn, prefetch: prefetch, bindKey: bindKey, logger: lgr, delay: reconnectDelay}
}

func (c *consumer) ConsumeEvents(ctx context.Context, handler interfaces.EventHandler) error {
	for {
		err := c.consume(ctx, handler)

		// Если контекст отменен или соединение закрыто намеренно - выходим
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err == nil {
			return nil
		}

		// Логируем ошибку и пытаемся переподключиться
		c.logger.Error("consumer_disconnected", "Events consumer disconnected, reconnecting", "", map[string]interface{}{
			"retry_in": c.delay.String(),
		}, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.delay):
			// Продолжаем попытки переподключения
		}
	}
}

func (c *consumer) consume(ctx context.Context, handler interfaces.EventHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	// Отслеживаем закрытие канала
	closeChan := ch.NotifyClose()

	// Set QoS
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	// Declare exchange
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Declare temporary exclusive queue
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	// Bind queue
	if err := ch.QueueBind(q.Name, c.bindKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	// Start consuming
	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consumer_started", "Listening for events", "", map[string]interface{}{
		"queue":    q.Name,
		"bind_key": c.bindKey,
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			if err := handler(ctx, msg.RoutingKey, msg.Body); err != nil {
				// битое сообщение не возвращаем в очередь
				c.logger.Error("event_rejected", "Failed to handle event", "", map[string]interface{}{
					"routing_key": msg.RoutingKey,
				}, err)
				msg.Nack(false, false)
				continue
			}
			msg.Ack(false)
		}
	}
}
