package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/YelzhanWeb/kasir/internal/adapter/logger"
	"github.com/YelzhanWeb/kasir/internal/app/apptest"
	"github.com/YelzhanWeb/kasir/internal/domain"
)

func newService() (*Service, *apptest.Store, *apptest.Publisher) {
	store := apptest.NewStore()
	pub := &apptest.Publisher{}
	return NewService(store.MenuRepo(), store.TableRepo(), pub, logger.Nop()), store, pub
}

func TestCreateMenuItem(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	item, err := svc.CreateMenuItem(ctx, domain.MenuItemInput{Name: " Sate Ayam ", Category: "Food", Price: 25000})
	if err != nil {
		t.Fatalf("CreateMenuItem() error = %v", err)
	}
	if item.ID == 0 || item.Name != "Sate Ayam" || !item.IsAvailable {
		t.Errorf("item = %+v", item)
	}

	menu, _ := svc.ListMenu(ctx)
	if len(menu) != 1 {
		t.Errorf("len(menu) = %d, want 1", len(menu))
	}

	_, err = svc.CreateMenuItem(ctx, domain.MenuItemInput{Name: "X", Category: "Food", Price: -1})
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 2 {
		t.Errorf("CreateMenuItem(invalid) error = %v, want 2 field errors", err)
	}
}

func TestUpdateMenuItem(t *testing.T) {
	svc, store, _ := newService()
	ctx := context.Background()
	existing := store.AddMenuItem("Es Teh", "Drinks", 5000)
	off := false

	item, err := svc.UpdateMenuItem(ctx, existing.ID, domain.MenuItemInput{
		Name: "Es Teh Manis", Category: "Drinks", Price: 6000, IsAvailable: &off,
	})
	if err != nil {
		t.Fatalf("UpdateMenuItem() error = %v", err)
	}
	if item.ID != existing.ID || item.Price != 6000 || item.IsAvailable {
		t.Errorf("item = %+v", item)
	}

	_, err = svc.UpdateMenuItem(ctx, 404, domain.MenuItemInput{Name: "Kopi", Category: "Drinks"})
	if !errors.Is(err, domain.ErrMenuItemNotFound) {
		t.Errorf("UpdateMenuItem(404) error = %v, want ErrMenuItemNotFound", err)
	}
}

func TestDeleteMenuItemInUse(t *testing.T) {
	svc, store, _ := newService()
	item := store.AddMenuItem("Nasi Goreng", "Food", 20000)
	store.AddOrder(&domain.Order{
		Status: domain.StatusPending,
		Items:  []domain.OrderItem{{MenuItemID: item.ID, Quantity: 1, Price: 20000}},
	})

	err := svc.DeleteMenuItem(context.Background(), item.ID)
	if !errors.Is(err, domain.ErrMenuItemInUse) {
		t.Errorf("DeleteMenuItem() error = %v, want ErrMenuItemInUse", err)
	}
}

func TestUpdateTable(t *testing.T) {
	status := string(domain.TableDirty)
	label := "Patio 1"

	tests := []struct {
		name       string
		label      *string
		status     *string
		wantStatus domain.TableStatus
		wantLabel  string
		wantEvents int
	}{
		{name: "statusChangePublishes", status: &status, wantStatus: domain.TableDirty, wantLabel: "T1", wantEvents: 1},
		{name: "labelOnlyIsSilent", label: &label, wantStatus: domain.TableAvailable, wantLabel: "Patio 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, pub := newService()
			table := store.AddTable("T1", domain.TableAvailable)

			patch, err := domain.NewTablePatch(tt.label, nil, tt.status, nil)
			if err != nil {
				t.Fatalf("NewTablePatch() error = %v", err)
			}
			got, err := svc.UpdateTable(context.Background(), table.ID, patch, "admin@resto.id")
			if err != nil {
				t.Fatalf("UpdateTable() error = %v", err)
			}
			if got.Status != tt.wantStatus || got.Label != tt.wantLabel {
				t.Errorf("table = %+v", got)
			}
			if got.Capacity != domain.DefaultTableCapacity {
				t.Errorf("capacity changed to %d", got.Capacity)
			}
			if len(pub.Tables) != tt.wantEvents {
				t.Fatalf("table events = %d, want %d", len(pub.Tables), tt.wantEvents)
			}
			if tt.wantEvents > 0 && (pub.Tables[0].ChangedBy != "admin@resto.id" || pub.Keys()[0] != "table.status.dirty") {
				t.Errorf("event = %+v, keys = %v", pub.Tables[0], pub.Keys())
			}
		})
	}
}

func TestCreateAndDeleteTable(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	table, err := svc.CreateTable(ctx, domain.TableInput{Label: "VIP"})
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if table.Status != domain.TableAvailable || table.Capacity != domain.DefaultTableCapacity {
		t.Errorf("defaults not applied: %+v", table)
	}

	if err := svc.DeleteTable(ctx, table.ID); err != nil {
		t.Fatalf("DeleteTable() error = %v", err)
	}
	if err := svc.DeleteTable(ctx, table.ID); !errors.Is(err, domain.ErrTableNotFound) {
		t.Errorf("second DeleteTable() error = %v, want ErrTableNotFound", err)
	}
}
