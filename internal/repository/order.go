package repository

import (
	"context"

	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/repository/dao"
)

type OrderDAO interface {
	Insert(ctx context.Context, order dao.Order) (dao.Order, error)
	FindByID(ctx context.Context, id uint) (dao.Order, error)
	FindAll(ctx context.Context) ([]dao.Order, error)
	FindByClient(ctx context.Context, clientID uint) ([]dao.Order, error)
	CountByClient(ctx context.Context, clientID uint) (int64, error)
	CountByClients(ctx context.Context, clientIDs []uint) (map[uint]int64, error)
	SetAllocationPoints(ctx context.Context, orderID, clientID uint, points int) error
	Update(ctx context.Context, order dao.Order, replaceClients bool) error
	Delete(ctx context.Context, id uint) error
}

type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	created, err := r.dao.Insert(ctx, orderDomainToDao(order))
	if err != nil {
		return domain.Order{}, err
	}

	return orderDaoToDomain(created), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	order, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	return orderDaoToDomain(order), nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Order, len(orders))
	for i, o := range orders {
		result[i] = orderDaoToDomain(o)
	}

	return result, nil
}

// FindByClient lists the orders the client appears in, from the client's side.
func (r *OrderRepository) FindByClient(ctx context.Context, clientID uint) ([]domain.ClientOrder, error) {
	orders, err := r.dao.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ClientOrder, 0, len(orders))
	for _, o := range orders {
		order := orderDaoToDomain(o)
		quantity := 0
		for _, c := range o.Clients {
			quantity += c.Quantity
		}

		result = append(result, domain.ClientOrder{
			OrderID:      order.ID,
			PointOfSales: order.PointOfSales,
			Product:      order.Product,
			Quantity:     quantity,
			Status:       order.Status,
			CreatedAt:    order.CreatedAt,
			UpdatedAt:    order.UpdatedAt,
		})
	}

	return result, nil
}

func (r *OrderRepository) CountByClient(ctx context.Context, clientID uint) (int64, error) {
	return r.dao.CountByClient(ctx, clientID)
}

func (r *OrderRepository) CountByClients(ctx context.Context, clientIDs []uint) (map[uint]int64, error) {
	return r.dao.CountByClients(ctx, clientIDs)
}

func (r *OrderRepository) SetAllocationPoints(ctx context.Context, orderID, clientID uint, points int) error {
	return r.dao.SetAllocationPoints(ctx, orderID, clientID, points)
}

func (r *OrderRepository) Update(ctx context.Context, order domain.Order, replaceClients bool) (domain.Order, error) {
	if err := r.dao.Update(ctx, orderDomainToDao(order), replaceClients); err != nil {
		return domain.Order{}, err
	}

	return r.FindByID(ctx, order.ID)
}

func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}

func orderDomainToDao(o domain.Order) dao.Order {
	clients := make([]dao.OrderClient, len(o.Clients))
	for i, a := range o.Clients {
		clients[i] = dao.OrderClient{
			OrderID:       o.ID,
			ClientID:      a.ClientID,
			Quantity:      a.Quantity,
			PointsAwarded: a.PointsAwarded,
		}
	}

	return dao.Order{
		ID:             o.ID,
		PointOfSalesID: o.PointOfSalesID,
		ProductID:      o.ProductID,
		TotalQuantity:  o.TotalQuantity,
		Clients:        clients,
		Status:         string(o.Status),
		Courier:        o.Courier,
		Note:           o.Note,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func orderDaoToDomain(o dao.Order) domain.Order {
	order := domain.Order{
		ID:             o.ID,
		PointOfSalesID: o.PointOfSalesID,
		ProductID:      o.ProductID,
		TotalQuantity:  o.TotalQuantity,
		Clients:        make([]domain.Allocation, len(o.Clients)),
		Status:         domain.OrderStatus(o.Status),
		Courier:        o.Courier,
		Note:           o.Note,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}

	if o.PointOfSales != nil {
		pos := posDaoToDomain(*o.PointOfSales)
		order.PointOfSales = &pos
	}
	if o.Product != nil {
		product := productDaoToDomain(*o.Product)
		order.Product = &product
	}

	for i, c := range o.Clients {
		allocation := domain.Allocation{
			ClientID:      c.ClientID,
			Quantity:      c.Quantity,
			PointsAwarded: c.PointsAwarded,
		}
		if c.Client != nil {
			client := clientDaoToDomain(*c.Client)
			allocation.Client = &client
		}
		order.Clients[i] = allocation
	}

	return order
}
