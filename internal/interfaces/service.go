package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/kasir/internal/domain"
)

// Команды для сервисов
type CreateOrderCommand struct {
	TableID       *int64
	CustomerName  string
	PaymentMethod string
	Items         []domain.LineInput
	// ChangedBy is recorded in the status log; empty means self-order.
	ChangedBy string
}

type UpdateStatusCommand struct {
	OrderID   int64
	Status    string
	ChangedBy string
}

type UpdateUserCommand struct {
	ID       int64
	Name     string
	Role     string
	Password *string
}

// Интерфейсы Сервисов (Business Logic)
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) error
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	GetOrderHistory(ctx context.Context, orderID int64) ([]*domain.StatusLog, error)
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*DashboardView, error)
	DailyReport(ctx context.Context, day time.Time) ([]*domain.Order, error)
}

type CatalogService interface {
	ListMenu(ctx context.Context) ([]*domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, in domain.MenuItemInput) (*domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id int64, in domain.MenuItemInput) (*domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error

	ListTables(ctx context.Context) ([]*domain.Table, error)
	CreateTable(ctx context.Context, in domain.TableInput) (*domain.Table, error)
	UpdateTable(ctx context.Context, id int64, patch domain.TablePatch, changedBy string) (*domain.Table, error)
	DeleteTable(ctx context.Context, id int64) error
}

type StaffService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, cmd UpdateUserCommand) (*domain.User, error)
	// DeleteUser removes id on behalf of actorID; an account cannot delete itself.
	DeleteUser(ctx context.Context, actorID, id int64) error
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// Ответы Dashboard Service
type DashboardView struct {
	MenuItems []*domain.MenuItem
	Tables    []*domain.Table
	Orders    []*domain.Order
	Summary   domain.Summary
}
