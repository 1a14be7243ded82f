package domain

import "time"

// Summary is the headline block of the dashboard.
type Summary struct {
	OpenOrders      int
	RevenueToday    Money
	MenuCount       int
	AvailableTables int
}

// Summarize counts open orders among orders and available tables.
// revenueToday is computed by the store over all orders of the day, not only
// the fetched window.
func Summarize(orders []*Order, menu []*MenuItem, tables []*Table, revenueToday Money) Summary {
	s := Summary{
		RevenueToday: revenueToday,
		MenuCount:    len(menu),
	}
	for _, o := range orders {
		if o.Status.IsOpen() {
			s.OpenOrders++
		}
	}
	for _, t := range tables {
		if t.Status == TableAvailable {
			s.AvailableTables++
		}
	}
	return s
}

// DayBounds returns the start of t's calendar day and the start of the next
// one, in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
