package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

// Service manages the menu and the floor plan.
type Service struct {
	menu      interfaces.MenuRepository
	tables    interfaces.TableRepository
	publisher interfaces.EventPublisher
	logger    logger.Logger
}

func NewService(
	menu interfaces.MenuRepository,
	tables interfaces.TableRepository,
	publisher interfaces.EventPublisher,
	logger logger.Logger,
) *Service {
	return &Service{
		menu:      menu,
		tables:    tables,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) ListMenu(ctx context.Context) ([]*domain.MenuItem, error) {
	return s.menu.List(ctx)
}

func (s *Service) CreateMenuItem(ctx context.Context, in domain.MenuItemInput) (*domain.MenuItem, error) {
	item, err := domain.NewMenuItem(in)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.menu.Create(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("menu_item_created", "Menu item created", logger.RequestID(ctx), map[string]interface{}{
		"menu_item_id": item.ID,
		"name":         item.Name,
		"price":        item.Price,
	})
	return item, nil
}

// UpdateMenuItem replaces every field of the item.
func (s *Service) UpdateMenuItem(ctx context.Context, id int64, in domain.MenuItemInput) (*domain.MenuItem, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", domain.CodeOutOfRange, fmt.Errorf("menu item id must be positive"))
	}
	item, err := domain.NewMenuItem(in)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	item.ID = id
	if err := s.menu.Update(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("menu_item_updated", "Menu item updated", logger.RequestID(ctx), map[string]interface{}{"menu_item_id": id})
	return item, nil
}

func (s *Service) DeleteMenuItem(ctx context.Context, id int64) error {
	if err := s.menu.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("menu_item_deleted", "Menu item deleted", logger.RequestID(ctx), map[string]interface{}{"menu_item_id": id})
	return nil
}

func (s *Service) ListTables(ctx context.Context) ([]*domain.Table, error) {
	return s.tables.List(ctx)
}

func (s *Service) CreateTable(ctx context.Context, in domain.TableInput) (*domain.Table, error) {
	table, err := domain.NewTable(in)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.tables.Create(ctx, table); err != nil {
		return nil, err
	}
	s.logger.Info("table_created", "Table created", logger.RequestID(ctx), map[string]interface{}{
		"table_id": table.ID,
		"label":    table.Label,
	})
	return table, nil
}

// UpdateTable applies patch. A status change is announced to subscribers.
func (s *Service) UpdateTable(ctx context.Context, id int64, patch domain.TablePatch, changedBy string) (*domain.Table, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", domain.CodeOutOfRange, fmt.Errorf("table id must be positive"))
	}
	table, err := s.tables.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	requestID := logger.RequestID(ctx)
	s.logger.Info("table_updated", "Table updated", requestID, map[string]interface{}{
		"table_id":   table.ID,
		"status":     table.Status,
		"changed_by": changedBy,
	})

	if patch.Status != nil {
		evt := interfaces.TableEvent{
			TableID:   table.ID,
			Label:     table.Label,
			Status:    table.Status,
			ChangedBy: changedBy,
			Timestamp: time.Now().UTC(),
		}
		if err := s.publisher.PublishTableStatus(ctx, evt); err != nil {
			s.logger.Error("rabbitmq_publish_failed", "Failed to publish table status", requestID,
				map[string]interface{}{"table_id": table.ID}, err)
		}
	}
	return table, nil
}

func (s *Service) DeleteTable(ctx context.Context, id int64) error {
	if err := s.tables.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("table_deleted", "Table deleted", logger.RequestID(ctx), map[string]interface{}{"table_id": id})
	return nil
}
