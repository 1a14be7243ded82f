package order

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

const DefaultListLimit = 30

type Service struct {
	orders    interfaces.OrderRepository
	menu      interfaces.MenuRepository
	publisher interfaces.EventPublisher
	logger    logger.Logger
	policy    domain.TransitionPolicy
	listLimit int
}

func NewService(
	orders interfaces.OrderRepository,
	menu interfaces.MenuRepository,
	publisher interfaces.EventPublisher,
	logger logger.Logger,
	policy domain.TransitionPolicy,
	listLimit int,
) *Service {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &Service{
		orders:    orders,
		menu:      menu,
		publisher: publisher,
		logger:    logger,
		policy:    policy,
		listLimit: listLimit,
	}
}

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	requestID := logger.RequestID(ctx)

	// 1. Валидация входных данных
	draft, err := domain.NewOrderDraft(cmd.TableID, cmd.CustomerName, cmd.PaymentMethod, cmd.Items)
	if err != nil {
		s.logger.Debug("validation_failed", "Order validation failed", requestID, map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Цены берутся из меню одним запросом
	menu, err := s.menu.FindByIDs(ctx, draft.MenuItemIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve menu items: %w", err)
	}

	// 3. Расчет итога; неизвестные позиции отклоняются до записи в БД
	order, err := draft.Price(menu)
	if err != nil {
		s.logger.Debug("validation_failed", "Order references unknown menu items", requestID, map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// 4. Сохранение в БД (Транзакционно вместе с логами и столом)
	if err := s.orders.Create(ctx, order, cmd.ChangedBy); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to create order", requestID, nil, err)
		return nil, err
	}
	s.logger.Info("order_created", "Order created", requestID, map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
		"table_id": order.TableID,
	})

	// 5. Публикация событий; заказ уже сохранен, поэтому ошибки только логируются
	evt := orderEvent(order, "", cmd.ChangedBy)
	if err := s.publisher.PublishOrderCreated(ctx, evt); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish order", requestID, map[string]interface{}{"order_id": order.ID}, err)
	}
	if order.TableID != nil {
		s.publishTable(ctx, *order.TableID, domain.TableOccupied, order.ID, cmd.ChangedBy)
	}

	return order, nil
}

func (s *Service) UpdateStatus(ctx context.Context, cmd interfaces.UpdateStatusCommand) error {
	requestID := logger.RequestID(ctx)

	if cmd.OrderID <= 0 {
		return domain.NewValidationError("id", domain.CodeOutOfRange, fmt.Errorf("order id must be positive"))
	}
	status, err := domain.ParseOrderStatus(cmd.Status)
	if err != nil {
		return err
	}

	var previous domain.OrderStatus
	order, err := s.orders.UpdateStatus(ctx, cmd.OrderID, cmd.ChangedBy, func(o *domain.Order) error {
		previous = o.Status
		return o.TransitionTo(status, s.policy)
	})
	if err != nil {
		s.logger.Debug("status_update_rejected", "Order status update failed", requestID, map[string]interface{}{
			"order_id": cmd.OrderID,
			"status":   status,
			"error":    err.Error(),
		})
		return err
	}

	s.logger.Info("order_status_updated", "Order status updated", requestID, map[string]interface{}{
		"order_id":   order.ID,
		"old_status": previous,
		"new_status": order.Status,
		"changed_by": cmd.ChangedBy,
	})

	if err := s.publisher.PublishOrderStatus(ctx, orderEvent(order, previous, cmd.ChangedBy)); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish status update", requestID, map[string]interface{}{"order_id": order.ID}, err)
	}
	if order.FreesTable() {
		s.publishTable(ctx, *order.TableID, domain.TableAvailable, order.ID, cmd.ChangedBy)
	}
	return nil
}

func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.ListRecent(ctx, s.listLimit)
}

func (s *Service) GetOrderHistory(ctx context.Context, orderID int64) ([]*domain.StatusLog, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.orders.GetStatusHistory(ctx, order.ID)
}

func (s *Service) publishTable(ctx context.Context, tableID int64, status domain.TableStatus, orderID int64, changedBy string) {
	evt := interfaces.TableEvent{
		TableID:   tableID,
		Status:    status,
		OrderID:   &orderID,
		ChangedBy: changedBy,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.PublishTableStatus(ctx, evt); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish table status", logger.RequestID(ctx),
			map[string]interface{}{"table_id": tableID}, err)
	}
}

func orderEvent(o *domain.Order, old domain.OrderStatus, changedBy string) interfaces.OrderEvent {
	return interfaces.OrderEvent{
		OrderID:       o.ID,
		TableID:       o.TableID,
		CustomerName:  o.CustomerName,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		OldStatus:     old,
		Status:        o.Status,
		ChangedBy:     changedBy,
		Timestamp:     time.Now().UTC(),
	}
}
