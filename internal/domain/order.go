package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAllocationExceedsTotal = errors.New("allocation exceeds total quantity")
	ErrDuplicateClient        = errors.New("duplicate client in order")
)

type OrderStatus string

const (
	OrderStatusSent       OrderStatus = "sent"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
)

const DefaultCourier = "Bartolini"

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusSent, OrderStatusProcessing, OrderStatusDelivered:
		return true
	default:
		return false
	}
}

// Allocation says how many units of the order's product went to one client.
type Allocation struct {
	ClientID      uint    `json:"client_id"`
	Client        *Client `json:"client,omitempty"`
	Quantity      int     `json:"quantity"`
	PointsAwarded int     `json:"points_awarded"`
}

type Order struct {
	ID             uint          `json:"id"`
	PointOfSalesID uint          `json:"point_of_sales_id"`
	PointOfSales   *PointOfSales `json:"point_of_sales,omitempty"`
	ProductID      uint          `json:"product_id"`
	Product        *Product      `json:"product,omitempty"`
	TotalQuantity  int           `json:"total_quantity"`
	Clients        []Allocation  `json:"clients"`
	Status         OrderStatus   `json:"status"`
	Courier        string        `json:"courier"`
	Note           string        `json:"note"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (o Order) AllocatedQuantity() int {
	sum := 0
	for _, a := range o.Clients {
		sum += a.Quantity
	}
	return sum
}

// HasAccruedPoints reports whether any client earned points from this order.
func (o Order) HasAccruedPoints() bool {
	for _, a := range o.Clients {
		if a.PointsAwarded > 0 {
			return true
		}
	}
	return false
}

func (o Order) ClientIDs() []uint {
	ids := make([]uint, len(o.Clients))
	for i, a := range o.Clients {
		ids[i] = a.ClientID
	}
	return ids
}

// ValidateAllocations checks the allocation list against the order total and
// returns every violation found, nil when the list is valid.
func ValidateAllocations(totalQuantity int, allocations []Allocation) []error {
	var errs []error

	sum := 0
	for _, a := range allocations {
		sum += a.Quantity
	}
	if sum > totalQuantity {
		errs = append(errs, fmt.Errorf("%w: %d allocated, %d available", ErrAllocationExceedsTotal, sum, totalQuantity))
	}

	seen := make(map[uint]struct{}, len(allocations))
	for _, a := range allocations {
		if _, ok := seen[a.ClientID]; ok {
			errs = append(errs, fmt.Errorf("%w: client %d", ErrDuplicateClient, a.ClientID))
			continue
		}
		seen[a.ClientID] = struct{}{}
	}

	return errs
}

type NewOrder struct {
	PointOfSalesID uint
	ProductID      uint
	TotalQuantity  int
	Clients        []Allocation
	Status         OrderStatus
	Courier        string
	Note           string
}

// OrderUpdate carries the fields of a PUT; nil fields are left untouched.
type OrderUpdate struct {
	PointOfSalesID *uint
	ProductID      *uint
	TotalQuantity  *int
	Clients        []Allocation
	Status         *OrderStatus
	Courier        *string
	Note           *string
}

// ChangesAllocations reports whether applying u to o would change the product
// or the client allocations. Allocations are compared as a set, so a resent
// list in another order is not a change.
func (u OrderUpdate) ChangesAllocations(o Order) bool {
	if u.ProductID != nil && *u.ProductID != o.ProductID {
		return true
	}
	if u.Clients == nil {
		return false
	}
	if len(u.Clients) != len(o.Clients) {
		return true
	}

	current := make(map[uint]int, len(o.Clients))
	for _, a := range o.Clients {
		current[a.ClientID] = a.Quantity
	}
	for _, a := range u.Clients {
		quantity, ok := current[a.ClientID]
		if !ok || quantity != a.Quantity {
			return true
		}
		delete(current, a.ClientID)
	}

	return false
}
