package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusPreparing OrderStatus = "preparing"
	StatusServed    OrderStatus = "served"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

// kitchen workflow order; cancelled sits outside it
var statusRank = map[OrderStatus]int{
	StatusPending:   1,
	StatusAccepted:  2,
	StatusPreparing: 3,
	StatusServed:    4,
	StatusPaid:      5,
	StatusCancelled: 0,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := statusRank[status]; !ok {
		return "", NewValidationError("status", CodeInvalidValue,
			fmt.Errorf("status must be one of: pending, accepted, preparing, served, paid, cancelled"))
	}
	return status, nil
}

// IsOpen reports whether the order still occupies the kitchen or the till.
func (s OrderStatus) IsOpen() bool {
	return s != StatusPaid && s != StatusCancelled
}

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TableDirty     TableStatus = "dirty"
)

func ParseTableStatus(s string) (TableStatus, error) {
	switch status := TableStatus(s); status {
	case TableAvailable, TableOccupied, TableReserved, TableDirty:
		return status, nil
	}
	return "", NewValidationError("status", CodeInvalidValue,
		fmt.Errorf("status must be one of: available, occupied, reserved, dirty"))
}

// TransitionPolicy decides which order status changes are accepted.
type TransitionPolicy string

const (
	// PolicyPermissive accepts any status from any status, allowing manual
	// correction by staff.
	PolicyPermissive TransitionPolicy = "permissive"
	// PolicyStrict only moves forward through the kitchen workflow. Cancelling
	// is possible until the order is paid; paid and cancelled are final.
	PolicyStrict TransitionPolicy = "strict"
)

func ParseTransitionPolicy(s string) (TransitionPolicy, error) {
	switch TransitionPolicy(s) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown transition policy %q", s)
}

func (p TransitionPolicy) Allows(from, to OrderStatus) bool {
	if p != PolicyStrict {
		return true
	}
	if !from.IsOpen() || from == to {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return statusRank[to] > statusRank[from]
}

// StatusLog represents a log entry for order status changes
type StatusLog struct {
	ID        int64
	OrderID   int64
	Status    OrderStatus
	ChangedBy string
	ChangedAt time.Time
}
