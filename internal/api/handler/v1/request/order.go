package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/workhub/orders-api/internal/domain"
)

const maxNoteLength = 500

var orderStatuses = []interface{}{
	string(domain.OrderStatusSent),
	string(domain.OrderStatusProcessing),
	string(domain.OrderStatusDelivered),
}

type AllocationRequest struct {
	ClientID uint `json:"client_id"`
	Quantity int  `json:"quantity"`
}

func (a AllocationRequest) Validate() error {
	return validation.ValidateStruct(
		&a,
		validation.Field(&a.ClientID, validation.Required, validation.Min(uint(1))),
		validation.Field(&a.Quantity, validation.Required, validation.Min(1)),
	)
}

func toAllocations(reqs []AllocationRequest) []domain.Allocation {
	if reqs == nil {
		return nil
	}

	allocations := make([]domain.Allocation, len(reqs))
	for i, a := range reqs {
		allocations[i] = domain.Allocation{ClientID: a.ClientID, Quantity: a.Quantity}
	}

	return allocations
}

type CreateOrderRequest struct {
	PointOfSalesID uint                `json:"point_of_sales_id"`
	ProductID      uint                `json:"product_id"`
	TotalQuantity  int                 `json:"total_quantity"`
	Clients        []AllocationRequest `json:"clients"`
	Status         string              `json:"status"`
	Courier        string              `json:"courier"`
	Note           string              `json:"note"`
}

// Validate reports the structural violations and the allocation rules
// (sum within total, no duplicate client) together.
func (req *CreateOrderRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.PointOfSalesID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.ProductID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.TotalQuantity, validation.Required, validation.Min(1)),
		validation.Field(&req.Clients, validation.Required),
		validation.Field(&req.Status, validation.In(orderStatuses...)),
		validation.Field(&req.Courier, validation.Length(0, 100)),
		validation.Field(&req.Note, validation.Length(0, maxNoteLength)),
	)

	return collect(err, domain.ValidateAllocations(req.TotalQuantity, toAllocations(req.Clients))...)
}

func (req *CreateOrderRequest) ToDomain() domain.NewOrder {
	return domain.NewOrder{
		PointOfSalesID: req.PointOfSalesID,
		ProductID:      req.ProductID,
		TotalQuantity:  req.TotalQuantity,
		Clients:        toAllocations(req.Clients),
		Status:         domain.OrderStatus(req.Status),
		Courier:        req.Courier,
		Note:           req.Note,
	}
}

type UpdateOrderRequest struct {
	PointOfSalesID *uint               `json:"point_of_sales_id"`
	ProductID      *uint               `json:"product_id"`
	TotalQuantity  *int                `json:"total_quantity"`
	Clients        []AllocationRequest `json:"clients"`
	Status         *string             `json:"status"`
	Courier        *string             `json:"courier"`
	Note           *string             `json:"note"`
}

func (req *UpdateOrderRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.PointOfSalesID, validation.Min(uint(1))),
		validation.Field(&req.ProductID, validation.Min(uint(1))),
		validation.Field(&req.TotalQuantity, validation.Min(1)),
		validation.Field(&req.Clients, validation.By(func(interface{}) error {
			if req.Clients != nil && len(req.Clients) == 0 {
				return errors.New("cannot be empty")
			}
			return nil
		})),
		validation.Field(&req.Status, validation.In(orderStatuses...)),
		validation.Field(&req.Courier, validation.Length(0, 100)),
		validation.Field(&req.Note, validation.Length(0, maxNoteLength)),
	)

	var extra []error
	if req.Clients != nil && req.TotalQuantity != nil {
		extra = domain.ValidateAllocations(*req.TotalQuantity, toAllocations(req.Clients))
	}

	return collect(err, extra...)
}

func (req *UpdateOrderRequest) ToDomain() domain.OrderUpdate {
	u := domain.OrderUpdate{
		PointOfSalesID: req.PointOfSalesID,
		ProductID:      req.ProductID,
		TotalQuantity:  req.TotalQuantity,
		Clients:        toAllocations(req.Clients),
		Courier:        req.Courier,
		Note:           req.Note,
	}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		u.Status = &status
	}

	return u
}
