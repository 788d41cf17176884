package repository

import (
	"context"

	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/repository/dao"
)

type ProductDAO interface {
	Insert(ctx context.Context, product dao.Product) (dao.Product, error)
	FindByID(ctx context.Context, id uint) (dao.Product, error)
	FindAll(ctx context.Context) ([]dao.Product, error)
	InsertCategory(ctx context.Context, category dao.Category) (dao.Category, error)
	FindCategoryByName(ctx context.Context, name string) (dao.Category, error)
	FindAllCategories(ctx context.Context) ([]dao.Category, error)
}

type ProductRepository struct {
	dao ProductDAO
}

func NewProductRepository(dao ProductDAO) *ProductRepository {
	return &ProductRepository{
		dao: dao,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	created, err := r.dao.Insert(ctx, dao.Product{
		Name:        product.Name,
		SKU:         product.SKU,
		Price:       product.Price,
		CategoryID:  product.CategoryID,
		Description: product.Description,
		Image:       product.Image,
	})
	if err != nil {
		return domain.Product{}, err
	}

	return productDaoToDomain(created), nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	product, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	return productDaoToDomain(product), nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	products, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Product, len(products))
	for i, p := range products {
		result[i] = productDaoToDomain(p)
	}

	return result, nil
}

func (r *ProductRepository) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	category, err := r.dao.InsertCategory(ctx, dao.Category{Name: name})
	if err != nil {
		return domain.Category{}, err
	}

	return categoryDaoToDomain(category), nil
}

func (r *ProductRepository) FindCategoryByName(ctx context.Context, name string) (domain.Category, error) {
	category, err := r.dao.FindCategoryByName(ctx, name)
	if err != nil {
		return domain.Category{}, err
	}

	return categoryDaoToDomain(category), nil
}

func (r *ProductRepository) FindAllCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := r.dao.FindAllCategories(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Category, len(categories))
	for i, c := range categories {
		result[i] = categoryDaoToDomain(c)
	}

	return result, nil
}

func categoryDaoToDomain(c dao.Category) domain.Category {
	return domain.Category{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func productDaoToDomain(p dao.Product) domain.Product {
	product := domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		category := categoryDaoToDomain(*p.Category)
		product.Category = &category
	}

	return product
}
