package service

import (
	"context"
	"fmt"

	"github.com/workhub/orders-api/internal/domain"
)

// OrderQueryService serves orders enriched with loyalty figures computed at
// read time from each client's current program.
type OrderQueryService struct {
	orders OrderRepository
	calc   PointsCalculator
}

func NewOrderQueryService(orders OrderRepository, calc PointsCalculator) *OrderQueryService {
	return &OrderQueryService{
		orders: orders,
		calc:   calc,
	}
}

func (s *OrderQueryService) ListOrders(ctx context.Context) ([]domain.OrderSummary, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.orders.FindAll -> %w", err)
	}

	seen := make(map[uint]struct{})
	var ids []uint
	for _, o := range orders {
		for _, a := range o.Clients {
			if _, ok := seen[a.ClientID]; !ok {
				seen[a.ClientID] = struct{}{}
				ids = append(ids, a.ClientID)
			}
		}
	}

	counts, err := s.orders.CountByClients(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("s.orders.CountByClients -> %w", err)
	}

	summaries := make([]domain.OrderSummary, len(orders))
	for i, o := range orders {
		summaries[i] = s.summarize(o, counts)
	}

	return summaries, nil
}

func (s *OrderQueryService) summarize(o domain.Order, counts map[uint]int64) domain.OrderSummary {
	clients := make([]domain.AllocationSummary, len(o.Clients))
	for i, a := range o.Clients {
		summary := domain.AllocationSummary{
			ClientID:    a.ClientID,
			Client:      a.Client,
			Quantity:    a.Quantity,
			TotalOrders: counts[a.ClientID],
		}

		if a.Client != nil && a.Client.IsMember() {
			program := a.Client.AffiliateProgram
			summary.TotalPoints = program.Points
			if o.Product != nil {
				summary.PointsEarned = s.calc.Calculate(o.Product.AmountFor(a.Quantity), program.Tier)
			}
		}

		clients[i] = summary
	}

	return domain.OrderSummary{
		ID:            o.ID,
		PointOfSales:  o.PointOfSales,
		Product:       o.Product,
		TotalQuantity: o.TotalQuantity,
		Clients:       clients,
		Status:        o.Status,
		Courier:       o.Courier,
		Note:          o.Note,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
