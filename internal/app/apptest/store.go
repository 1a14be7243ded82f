// Package apptest provides in-memory repositories and a recording publisher
// for service tests. They follow the postgres adapter's error contract.
package apptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	menu   map[int64]*domain.MenuItem
	tables map[int64]*domain.Table
	orders map[int64]*domain.Order
	users  map[int64]*domain.User
	logs   []*domain.StatusLog

	// FailOrderCreate, when set, is returned by the order repository's Create
	// before anything is stored.
	FailOrderCreate error
}

func NewStore() *Store {
	return &Store{
		menu:   map[int64]*domain.MenuItem{},
		tables: map[int64]*domain.Table{},
		orders: map[int64]*domain.Order{},
		users:  map[int64]*domain.User{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) AddMenuItem(name, category string, price domain.Money) *domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &domain.MenuItem{ID: s.id(), Name: name, Category: category, Price: price, IsAvailable: true}
	s.menu[item.ID] = item
	return item
}

func (s *Store) AddTable(label string, status domain.TableStatus) *domain.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &domain.Table{ID: s.id(), Label: label, Capacity: domain.DefaultTableCapacity, Status: status}
	s.tables[t.ID] = t
	return t
}

// AddOrder stores o as is, keeping its CreatedAt.
func (s *Store) AddOrder(o *domain.Order) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id()
	s.orders[o.ID] = o
	return o
}

func (s *Store) AddUser(u *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	s.users[u.ID] = u
	return u
}

// Table returns a copy of the stored table.
func (s *Store) Table(id int64) (domain.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return domain.Table{}, false
	}
	return *t, true
}

func (s *Store) Order(id int64) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	return *o, true
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Store) User(email string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return *u, true
		}
	}
	return domain.User{}, false
}

func (s *Store) OrderRepo() interfaces.OrderRepository { return orderRepo{s} }
func (s *Store) MenuRepo() interfaces.MenuRepository { return menuRepo{s} }
func (s *Store) TableRepo() interfaces.TableRepository { return tableRepo{s} }
func (s *Store) UserRepo() interfaces.UserRepository { return userRepo{s} }

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, order *domain.Order, changedBy string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailOrderCreate != nil {
		return s.FailOrderCreate
	}
	var table *domain.Table
	if order.TableID != nil {
		t, ok := s.tables[*order.TableID]
		if !ok {
			return domain.NewValidationError("table_id", domain.CodeTableNotFound, domain.ErrTableNotFound)
		}
		table = t
	}

	order.ID = s.id()
	for i := range order.Items {
		order.Items[i].ID = s.id()
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	s.orders[order.ID] = &stored
	s.logs = append(s.logs, &domain.StatusLog{
		ID: s.id(), OrderID: order.ID, Status: order.Status, ChangedBy: changedBy, ChangedAt: order.CreatedAt,
	})
	if table != nil {
		table.Status = domain.TableOccupied
	}
	return nil
}

func (r orderRepo) UpdateStatus(_ context.Context, id int64, changedBy string, mutate interfaces.OrderMutator) (*domain.Order, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[id]
	if !ok {
		return nil, domain.NewValidationError("id", domain.CodeOrderNotFound, domain.ErrOrderNotFound)
	}
	working := *stored
	if err := mutate(&working); err != nil {
		return nil, err
	}
	*stored = working
	s.logs = append(s.logs, &domain.StatusLog{
		ID: s.id(), OrderID: id, Status: working.Status, ChangedBy: changedBy, ChangedAt: working.UpdatedAt,
	})
	if working.FreesTable() {
		if t, ok := s.tables[*working.TableID]; ok {
			t.Status = domain.TableAvailable
		}
	}
	out := working
	return &out, nil
}

func (r orderRepo) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.NewValidationError("id", domain.CodeOrderNotFound, domain.ErrOrderNotFound)
	}
	out := *o
	return &out, nil
}

func (r orderRepo) ListRecent(_ context.Context, limit int) ([]*domain.Order, error) {
	orders := r.sorted(func(*domain.Order) bool { return true })
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (r orderRepo) ListPaidBetween(_ context.Context, from, to time.Time) ([]*domain.Order, error) {
	return r.sorted(paidBetween(from, to)), nil
}

func (r orderRepo) SumPaidBetween(_ context.Context, from, to time.Time) (domain.Money, error) {
	var sum domain.Money
	for _, o := range r.sorted(paidBetween(from, to)) {
		sum += o.Total
	}
	return sum, nil
}

func (r orderRepo) GetStatusHistory(_ context.Context, orderID int64) ([]*domain.StatusLog, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.StatusLog{}
	for _, l := range s.logs {
		if l.OrderID == orderID {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r orderRepo) sorted(keep func(*domain.Order) bool) []*domain.Order {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Order{}
	for _, o := range s.orders {
		if keep(o) {
			c := *o
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func paidBetween(from, to time.Time) func(*domain.Order) bool {
	return func(o *domain.Order) bool {
		return o.Status == domain.StatusPaid && !o.CreatedAt.Before(from) && o.CreatedAt.Before(to)
	}
}

type menuRepo struct{ s *Store }

func (r menuRepo) List(context.Context) ([]*domain.MenuItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.MenuItem{}
	for _, m := range s.menu {
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r menuRepo) FindByIDs(_ context.Context, ids []int64) (map[int64]*domain.MenuItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[int64]*domain.MenuItem{}
	for _, id := range ids {
		if m, ok := s.menu[id]; ok {
			c := *m
			out[id] = &c
		}
	}
	return out, nil
}

func (r menuRepo) Create(_ context.Context, item *domain.MenuItem) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.id()
	c := *item
	s.menu[item.ID] = &c
	return nil
}

func (r menuRepo) Update(_ context.Context, item *domain.MenuItem) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menu[item.ID]; !ok {
		return domain.NewValidationError("id", domain.CodeMenuItemNotFound, domain.ErrMenuItemNotFound)
	}
	c := *item
	s.menu[item.ID] = &c
	return nil
}

func (r menuRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menu[id]; !ok {
		return domain.NewValidationError("id", domain.CodeMenuItemNotFound, domain.ErrMenuItemNotFound)
	}
	for _, o := range s.orders {
		for _, it := range o.Items {
			if it.MenuItemID == id {
				return domain.NewValidationError("id", domain.CodeInvalidValue, domain.ErrMenuItemInUse)
			}
		}
	}
	delete(s.menu, id)
	return nil
}

type tableRepo struct{ s *Store }

func (r tableRepo) List(context.Context) ([]*domain.Table, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Table{}
	for _, t := range s.tables {
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r tableRepo) Create(_ context.Context, table *domain.Table) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	table.ID = s.id()
	c := *table
	s.tables[table.ID] = &c
	return nil
}

func (r tableRepo) Update(_ context.Context, id int64, patch domain.TablePatch) (*domain.Table, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, domain.NewValidationError("id", domain.CodeTableNotFound, domain.ErrTableNotFound)
	}
	if patch.Label != nil {
		t.Label = *patch.Label
	}
	if patch.Capacity != nil {
		t.Capacity = *patch.Capacity
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Note != nil {
		n := *patch.Note
		t.Note = &n
	}
	c := *t
	return &c, nil
}

func (r tableRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[id]; !ok {
		return domain.NewValidationError("id", domain.CodeTableNotFound, domain.ErrTableNotFound)
	}
	delete(s.tables, id)
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) List(context.Context) ([]*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.User{}
	for _, u := range s.users {
		c := *u
		c.PasswordHash = ""
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.NewValidationError("email", domain.CodeInvalidValue, domain.ErrEmailTaken)
		}
	}
	user.ID = s.id()
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (r userRepo) Update(_ context.Context, id int64, name string, role domain.Role, passwordHash *string) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NewValidationError("id", domain.CodeInvalidValue, domain.ErrUserNotFound)
	}
	u.Name = name
	u.Role = role
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	c := *u
	c.PasswordHash = ""
	return &c, nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.NewValidationError("id", domain.CodeInvalidValue, domain.ErrUserNotFound)
	}
	delete(s.users, id)
	return nil
}
