package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

const orderColumns = `id, table_id, customer_name, status, total, payment_method, created_at, updated_at`

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order, changedBy string) error {
	return withTx(ctx, r.db, func(tx Tx) error {
		// Insert order
		query := `
			INSERT INTO orders (table_id, customer_name, status, total, payment_method, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		err := tx.QueryRow(ctx, query,
			order.TableID, order.CustomerName, order.Status, order.Total, order.PaymentMethod,
			order.CreatedAt, order.UpdatedAt,
		).Scan(&order.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.NewValidationError("table_id", domain.CodeTableNotFound, domain.ErrTableNotFound)
			}
			return fmt.Errorf("failed to insert order: %w", err)
		}

		// Insert order items
		itemQuery := `
			INSERT INTO order_items (order_id, menu_item_id, quantity, price, note)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		for i := range order.Items {
			item := &order.Items[i]
			err = tx.QueryRow(ctx, itemQuery,
				order.ID, item.MenuItemID, item.Quantity, item.Price, item.Note,
			).Scan(&item.ID)
			if err != nil {
				if isForeignKeyViolation(err) {
					return domain.NewValidationError(fmt.Sprintf("items[%d].menu_item_id", i),
						domain.CodeMenuItemNotFound, domain.ErrMenuItemNotFound)
				}
				return fmt.Errorf("failed to insert order item: %w", err)
			}
			item.OrderID = order.ID
		}

		// Log initial status
		if err := logStatus(ctx, tx, order.ID, order.Status, changedBy, order.CreatedAt); err != nil {
			return err
		}

		// Occupy table
		if order.TableID != nil {
			found, err := setTableStatus(ctx, tx, *order.TableID, domain.TableOccupied)
			if err != nil {
				return err
			}
			if !found {
				return domain.NewValidationError("table_id", domain.CodeTableNotFound, domain.ErrTableNotFound)
			}
		}
		return nil
	})
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, changedBy string, mutate interfaces.OrderMutator) (*domain.Order, error) {
	var updated *domain.Order
	err := withTx(ctx, r.db, func(tx Tx) error {
		order, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NewValidationError("id", domain.CodeOrderNotFound, domain.ErrOrderNotFound)
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		if err := mutate(order); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
			order.Status, order.UpdatedAt, order.ID)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		if err := logStatus(ctx, tx, order.ID, order.Status, changedBy, order.UpdatedAt); err != nil {
			return err
		}

		if order.FreesTable() {
			// стол мог быть удален, это не ошибка
			if _, err := setTableStatus(ctx, tx, *order.TableID, domain.TableAvailable); err != nil {
				return err
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewValidationError("id", domain.CodeOrderNotFound, domain.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`
	orders, err := r.queryOrders(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListPaidBetween(ctx context.Context, from, to time.Time) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at ASC, id ASC
	`
	return r.queryOrders(ctx, query, domain.StatusPaid, from, to)
}

func (r *orderRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (domain.Money, error) {
	query := `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE status = $1 AND created_at >= $2 AND created_at < $3
	`
	var sum domain.Money
	if err := r.db.QueryRow(ctx, query, domain.StatusPaid, from, to).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return sum, nil
}

func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID int64) ([]*domain.StatusLog, error) {
	query := `
		SELECT id, order_id, status, changed_by, changed_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	logs := []*domain.StatusLog{}
	for rows.Next() {
		var log domain.StatusLog
		if err := rows.Scan(&log.ID, &log.OrderID, &log.Status, &log.ChangedBy, &log.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status history: %w", err)
	}

	return logs, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}

// loadItems fills Items of every order with one query, joining menu name and
// category. Deleted menu items leave both nil.
func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		o.Items = []domain.OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `
		SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.price, oi.note, m.name, m.category
		FROM order_items oi
		LEFT JOIN menu_items m ON m.id = oi.menu_item_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity, &item.Price,
			&item.Note, &item.MenuName, &item.MenuCategory); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read order items: %w", err)
	}
	return nil
}

func scanOrder(row Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.TableID, &o.CustomerName, &o.Status, &o.Total, &o.PaymentMethod,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func logStatus(ctx context.Context, q querier, orderID int64, status domain.OrderStatus, changedBy string, at time.Time) error {
	query := `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := q.Exec(ctx, query, orderID, status, changedBy, at); err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}
	return nil
}

// setTableStatus reports false when no table has the id.
func setTableStatus(ctx context.Context, q querier, tableID int64, status domain.TableStatus) (bool, error) {
	tag, err := q.Exec(ctx, `UPDATE tables SET status = $1, updated_at = now() WHERE id = $2`, status, tableID)
	if err != nil {
		return false, fmt.Errorf("failed to update table status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
