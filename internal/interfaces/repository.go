package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/kasir/internal/domain"
)

// OrderMutator changes a locked order in place. Returning an error aborts the
// surrounding transaction.
type OrderMutator func(order *domain.Order) error

// Интерфейсы Репозиториев (Adapter/Postgres)
type OrderRepository interface {
	// Create persists the order, its items and the initial status log, and
	// occupies the order's table, in one transaction.
	Create(ctx context.Context, order *domain.Order, changedBy string) error
	// UpdateStatus locks the order, applies mutate and persists the result.
	// A paid order with a table releases it in the same transaction.
	UpdateStatus(ctx context.Context, id int64, changedBy string, mutate OrderMutator) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)
	ListPaidBetween(ctx context.Context, from, to time.Time) ([]*domain.Order, error)
	SumPaidBetween(ctx context.Context, from, to time.Time) (domain.Money, error)
	GetStatusHistory(ctx context.Context, orderID int64) ([]*domain.StatusLog, error)
}

type MenuRepository interface {
	List(ctx context.Context) ([]*domain.MenuItem, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.MenuItem, error)
	Create(ctx context.Context, item *domain.MenuItem) error
	Update(ctx context.Context, item *domain.MenuItem) error
	Delete(ctx context.Context, id int64) error
}

type TableRepository interface {
	List(ctx context.Context) ([]*domain.Table, error)
	Create(ctx context.Context, table *domain.Table) error
	Update(ctx context.Context, id int64, patch domain.TablePatch) (*domain.Table, error)
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	List(ctx context.Context) ([]*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	// Update writes name and role, and the password hash when passwordHash is
	// not nil.
	Update(ctx context.Context, id int64, name string, role domain.Role, passwordHash *string) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
