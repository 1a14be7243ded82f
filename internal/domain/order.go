package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultCustomerName  = "Walk-in"
	DefaultPaymentMethod = "cash"

	maxCustomerName = 120
	maxItemNote     = 120
	minPayment      = 2
	MaxQuantity     = 99
)

// Money is an amount in minor currency units.
type Money int64

// Quantity is a validated line quantity in 1..MaxQuantity.
type Quantity int

func NewQuantity(n int) (Quantity, error) {
	if n < 1 || n > MaxQuantity {
		return 0, fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	}
	return Quantity(n), nil
}

// Order represents a customer's order at the till or a table
type Order struct {
	ID            int64
	TableID       *int64
	CustomerName  string
	Status        OrderStatus
	Total         Money
	PaymentMethod string
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is one order line. Price is the menu price at order time.
type OrderItem struct {
	ID           int64
	OrderID      int64
	MenuItemID   int64
	Quantity     Quantity
	Price        Money
	Note         *string
	MenuName     *string
	MenuCategory *string
}

// LineTotal returns price times quantity, or ErrTotalOverflow when the
// product does not fit in Money.
func (i OrderItem) LineTotal() (Money, error) {
	if i.Price < 0 || i.Quantity < 0 {
		return 0, fmt.Errorf("negative price or quantity on menu item %d", i.MenuItemID)
	}
	if i.Quantity > 0 && i.Price > math.MaxInt64/Money(i.Quantity) {
		return 0, ErrTotalOverflow
	}
	return i.Price * Money(i.Quantity), nil
}

// CalculateTotal sums all line totals into the order total. On error the
// total is left untouched.
func (o *Order) CalculateTotal() error {
	var total Money
	for _, item := range o.Items {
		line, err := item.LineTotal()
		if err != nil {
			return err
		}
		if total > math.MaxInt64-line {
			return ErrTotalOverflow
		}
		total += line
	}
	o.Total = total
	return nil
}

// TransitionTo moves the order to newStatus if policy allows it.
func (o *Order) TransitionTo(newStatus OrderStatus, policy TransitionPolicy) error {
	if !policy.Allows(o.Status, newStatus) {
		return NewValidationError("status", CodeInvalidTransition,
			fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, newStatus))
	}
	o.Status = newStatus
	o.UpdatedAt = time.Now()
	return nil
}

// FreesTable reports whether persisting the order releases its table.
func (o *Order) FreesTable() bool {
	return o.Status == StatusPaid && o.TableID != nil
}

// LineInput is an unvalidated order line as received from a client.
type LineInput struct {
	MenuItemID int64
	Quantity   int
	Note       string
}

type OrderLine struct {
	MenuItemID int64
	Quantity   Quantity
	Note       *string
}

// OrderDraft is a validated order request that has not been priced yet.
type OrderDraft struct {
	TableID       *int64
	CustomerName  string
	PaymentMethod string
	Lines         []OrderLine
}

// NewOrderDraft validates a create-order request. Empty customer name and
// payment method fall back to DefaultCustomerName and DefaultPaymentMethod.
func NewOrderDraft(tableID *int64, customerName, paymentMethod string, lines []LineInput) (*OrderDraft, error) {
	var errs ValidationErrors

	if tableID != nil && *tableID <= 0 {
		errs.add("table_id", CodeOutOfRange, "table id must be positive")
	}

	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		customerName = DefaultCustomerName
	}
	if utf8.RuneCountInString(customerName) > maxCustomerName {
		errs.add("customer_name", CodeTooLong, fmt.Sprintf("customer name must not exceed %d characters", maxCustomerName))
	}

	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}
	if utf8.RuneCountInString(paymentMethod) < minPayment {
		errs.add("payment_method", CodeTooShort, fmt.Sprintf("payment method must be at least %d characters", minPayment))
	}

	if len(lines) == 0 {
		errs.add("items", CodeRequired, "order must contain at least 1 item")
	}

	draft := &OrderDraft{
		TableID:       tableID,
		CustomerName:  customerName,
		PaymentMethod: paymentMethod,
		Lines:         make([]OrderLine, 0, len(lines)),
	}

	for i, in := range lines {
		prefix := fmt.Sprintf("items[%d]", i)
		if in.MenuItemID <= 0 {
			errs.add(prefix+".menu_item_id", CodeOutOfRange, "menu item id must be positive")
		}
		qty, err := NewQuantity(in.Quantity)
		if err != nil {
			errs.add(prefix+".quantity", CodeOutOfRange, err.Error())
		}
		line := OrderLine{MenuItemID: in.MenuItemID, Quantity: qty}
		if note := strings.TrimSpace(in.Note); note != "" {
			if utf8.RuneCountInString(note) > maxItemNote {
				errs.add(prefix+".note", CodeTooLong, fmt.Sprintf("note must not exceed %d characters", maxItemNote))
			}
			line.Note = &note
		}
		draft.Lines = append(draft.Lines, line)
	}

	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return draft, nil
}

// MenuItemIDs returns the distinct referenced menu item ids in request order.
func (d *OrderDraft) MenuItemIDs() []int64 {
	seen := make(map[int64]bool, len(d.Lines))
	ids := make([]int64, 0, len(d.Lines))
	for _, l := range d.Lines {
		if !seen[l.MenuItemID] {
			seen[l.MenuItemID] = true
			ids = append(ids, l.MenuItemID)
		}
	}
	return ids
}

// Price turns the draft into a pending order, copying unit prices from menu.
// Every line whose menu item is missing from menu is reported.
func (d *OrderDraft) Price(menu map[int64]*MenuItem) (*Order, error) {
	var errs ValidationErrors
	items := make([]OrderItem, 0, len(d.Lines))
	for i, l := range d.Lines {
		m, ok := menu[l.MenuItemID]
		if !ok {
			errs = append(errs, NewValidationError(
				fmt.Sprintf("items[%d].menu_item_id", i), CodeMenuItemNotFound, ErrMenuItemNotFound)...)
			continue
		}
		items = append(items, OrderItem{
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			Price:      m.Price,
			Note:       l.Note,
		})
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &Order{
		TableID:       d.TableID,
		CustomerName:  d.CustomerName,
		Status:        StatusPending,
		PaymentMethod: d.PaymentMethod,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := order.CalculateTotal(); err != nil {
		return nil, NewValidationError("items", CodeOutOfRange, err)
	}
	return order, nil
}
