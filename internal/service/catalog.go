package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/workhub/orders-api/internal/domain"
)

var tierDescriptions = map[domain.Tier]string{
	domain.TierStandard: "Default tier for newly enrolled customers",
	domain.TierPremium:  "Double accrual rate, reached after repeated orders",
}

// CatalogService manages the warehouse catalog, the points of sale and the
// affiliate tier definitions.
type CatalogService struct {
	products ProductRepository
	points   PointOfSalesRepository
	programs AffiliateProgramRepository
}

func NewCatalogService(products ProductRepository, points PointOfSalesRepository, programs AffiliateProgramRepository) *CatalogService {
	return &CatalogService{
		products: products,
		points:   points,
		programs: programs,
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if !product.Price.IsPositive() {
		return domain.Product{}, NewValidationError(errors.New("price must be positive"))
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.products.Create -> %w", err)
	}

	return created, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.products.FindByID -> %w", err)
	}

	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.products.FindAll -> %w", err)
	}

	return products, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	category, err := s.products.CreateCategory(ctx, name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("s.products.CreateCategory -> %w", err)
	}

	return category, nil
}

// EnsureCategory returns the named category, creating it when missing.
func (s *CatalogService) EnsureCategory(ctx context.Context, name string) (domain.Category, error) {
	category, err := s.products.FindCategoryByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return domain.Category{}, fmt.Errorf("s.products.FindCategoryByName -> %w", err)
	}

	return s.CreateCategory(ctx, name)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.products.FindAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.products.FindAllCategories -> %w", err)
	}

	return categories, nil
}

func (s *CatalogService) CreatePointOfSales(ctx context.Context, pos domain.PointOfSales) (domain.PointOfSales, error) {
	created, err := s.points.Create(ctx, pos)
	if err != nil {
		return domain.PointOfSales{}, fmt.Errorf("s.points.Create -> %w", err)
	}

	return created, nil
}

func (s *CatalogService) ListPointsOfSales(ctx context.Context) ([]domain.PointOfSales, error) {
	points, err := s.points.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.points.FindAll -> %w", err)
	}

	return points, nil
}

// EnsureTiers makes sure every known tier has a definition row. Promotion
// only targets tiers that are defined.
func (s *CatalogService) EnsureTiers(ctx context.Context) error {
	for _, tier := range domain.Tiers {
		if _, err := s.programs.UpsertTier(ctx, domain.AffiliateTier{
			Name:        tier,
			Description: tierDescriptions[tier],
		}); err != nil {
			return fmt.Errorf("s.programs.UpsertTier -> %w", err)
		}
	}

	return nil
}

func (s *CatalogService) ListTiers(ctx context.Context) ([]domain.AffiliateTier, error) {
	tiers, err := s.programs.FindAllTiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.programs.FindAllTiers -> %w", err)
	}

	return tiers, nil
}
