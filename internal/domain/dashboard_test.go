package domain

import (
	"testing"
	"time"
)

func TestSummarizeOpenOrders(t *testing.T) {
	orders := []*Order{
		{Status: StatusPending},
		{Status: StatusAccepted},
		{Status: StatusPreparing},
		{Status: StatusServed},
		{Status: StatusPaid},
		{Status: StatusCancelled},
	}
	tables := []*Table{
		{Status: TableAvailable},
		{Status: TableOccupied},
		{Status: TableAvailable},
		{Status: TableDirty},
	}
	menu := []*MenuItem{{ID: 1}, {ID: 2}, {ID: 3}}

	s := Summarize(orders, menu, tables, 125000)

	if s.OpenOrders != 4 {
		t.Errorf("OpenOrders = %d, want 4", s.OpenOrders)
	}
	if s.AvailableTables != 2 {
		t.Errorf("AvailableTables = %d, want 2", s.AvailableTables)
	}
	if s.MenuCount != 3 {
		t.Errorf("MenuCount = %d, want 3", s.MenuCount)
	}
	if s.RevenueToday != 125000 {
		t.Errorf("RevenueToday = %d, want 125000", s.RevenueToday)
	}
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	now := time.Date(2026, 3, 14, 0, 30, 0, 0, loc)

	start, end := DayBounds(now)

	wantStart := time.Date(2026, 3, 14, 0, 0, 0, 0, loc)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantStart.Add(24 * time.Hour)) {
		t.Errorf("end = %v, want %v", end, wantStart.Add(24*time.Hour))
	}
	if start.Location() != loc {
		t.Errorf("start location = %v, want %v", start.Location(), loc)
	}
}
