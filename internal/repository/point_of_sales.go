package repository

import (
	"context"

	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/repository/dao"
)

type PointOfSalesDAO interface {
	Insert(ctx context.Context, pos dao.PointOfSales) (dao.PointOfSales, error)
	FindByID(ctx context.Context, id uint) (dao.PointOfSales, error)
	FindAll(ctx context.Context) ([]dao.PointOfSales, error)
}

type PointOfSalesRepository struct {
	dao PointOfSalesDAO
}

func NewPointOfSalesRepository(dao PointOfSalesDAO) *PointOfSalesRepository {
	return &PointOfSalesRepository{
		dao: dao,
	}
}

func (r *PointOfSalesRepository) Create(ctx context.Context, pos domain.PointOfSales) (domain.PointOfSales, error) {
	created, err := r.dao.Insert(ctx, dao.PointOfSales{
		Name:     pos.Name,
		Location: locationDomainToDao(pos.Location),
	})
	if err != nil {
		return domain.PointOfSales{}, err
	}

	return posDaoToDomain(created), nil
}

func (r *PointOfSalesRepository) FindByID(ctx context.Context, id uint) (domain.PointOfSales, error) {
	pos, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.PointOfSales{}, err
	}

	return posDaoToDomain(pos), nil
}

func (r *PointOfSalesRepository) FindAll(ctx context.Context) ([]domain.PointOfSales, error) {
	points, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.PointOfSales, len(points))
	for i, p := range points {
		result[i] = posDaoToDomain(p)
	}

	return result, nil
}

func posDaoToDomain(p dao.PointOfSales) domain.PointOfSales {
	return domain.PointOfSales{
		ID:        p.ID,
		Name:      p.Name,
		Location:  locationDaoToDomain(p.Location),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
