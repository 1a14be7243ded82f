package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/kasir/internal/domain"
)

const (
	EventOrderCreated = "order.created"
	EventOrderStatus  = "order.status"
	EventTableStatus  = "table.status"
)

// Сообщения RabbitMQ
type OrderEvent struct {
	OrderID       int64              `json:"order_id"`
	TableID       *int64             `json:"table_id"`
	CustomerName  string             `json:"customer_name"`
	PaymentMethod string             `json:"payment_method"`
	Total         domain.Money       `json:"total"`
	OldStatus     domain.OrderStatus `json:"old_status,omitempty"`
	Status        domain.OrderStatus `json:"status"`
	ChangedBy     string             `json:"changed_by"`
	Timestamp     time.Time          `json:"timestamp"`
}

type TableEvent struct {
	TableID   int64              `json:"table_id"`
	Label     string             `json:"label,omitempty"`
	Status    domain.TableStatus `json:"status"`
	OrderID   *int64             `json:"order_id,omitempty"`
	ChangedBy string             `json:"changed_by"`
	Timestamp time.Time          `json:"timestamp"`
}

// Интерфейсы Messaging (Adapter/RabbitMQ)
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, evt OrderEvent) error
	PublishOrderStatus(ctx context.Context, evt OrderEvent) error
	PublishTableStatus(ctx context.Context, evt TableEvent) error
}

type EventConsumer interface {
	ConsumeEvents(ctx context.Context, handler EventHandler) error
}

// EventHandler receives the routing key and raw body of one delivery.
type EventHandler func(ctx context.Context, routingKey string, body []byte) error
