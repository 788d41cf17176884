package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/service"
)

type Fixtures struct {
	Categories    []string              `yaml:"categories"`
	Products      []ProductFixture      `yaml:"products"`
	PointsOfSales []PointOfSalesFixture `yaml:"points_of_sale"`
	Customers     []CustomerFixture     `yaml:"customers"`
}

type ProductFixture struct {
	Name        string `yaml:"name"`
	SKU         string `yaml:"sku"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

type LocationFixture struct {
	Address string `yaml:"address"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	ZipCode string `yaml:"zip_code"`
	Country string `yaml:"country"`
}

func (l LocationFixture) toDomain() domain.Location {
	return domain.Location{
		Address: l.Address,
		City:    l.City,
		State:   l.State,
		ZipCode: l.ZipCode,
		Country: l.Country,
	}
}

type PointOfSalesFixture struct {
	Name     string          `yaml:"name"`
	Location LocationFixture `yaml:"location"`
}

type CustomerFixture struct {
	Email       string          `yaml:"email"`
	FirstName   string          `yaml:"first_name"`
	LastName    string          `yaml:"last_name"`
	FiscalCode  string          `yaml:"fiscal_code"`
	PhoneNumber string          `yaml:"phone_number"`
	BirthDate   string          `yaml:"birth_date"`
	Tier        string          `yaml:"tier"`
	Location    LocationFixture `yaml:"location"`
}

type Catalog interface {
	EnsureTiers(ctx context.Context) error
	EnsureCategory(ctx context.Context, name string) (domain.Category, error)
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	CreatePointOfSales(ctx context.Context, pos domain.PointOfSales) (domain.PointOfSales, error)
}

type Customers interface {
	RegisterCustomer(ctx context.Context, client domain.Client, tier string) (domain.Client, error)
}

func LoadFixtures(path string) (Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("os.ReadFile -> %w", err)
	}

	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Fixtures{}, fmt.Errorf("yaml.Unmarshal -> %w", err)
	}

	return f, nil
}

// Summary counts what Apply loaded. Products, points of sale and customers
// that already existed are skipped and not counted.
type Summary struct {
	Categories    int
	Products      int
	PointsOfSales int
	Customers     int
}

// Apply loads f into the database. It can run repeatedly.
func Apply(ctx context.Context, f Fixtures, catalog Catalog, customers Customers) (Summary, error) {
	var sum Summary

	if err := catalog.EnsureTiers(ctx); err != nil {
		return sum, fmt.Errorf("catalog.EnsureTiers -> %w", err)
	}

	categories := make(map[string]uint)
	ensure := func(name string) (uint, error) {
		if id, ok := categories[name]; ok {
			return id, nil
		}
		c, err := catalog.EnsureCategory(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("catalog.EnsureCategory(%s) -> %w", name, err)
		}
		categories[name] = c.ID
		sum.Categories++
		return c.ID, nil
	}

	for _, name := range f.Categories {
		if _, err := ensure(name); err != nil {
			return sum, err
		}
	}

	for _, p := range f.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return sum, fmt.Errorf("product %s: price -> %w", p.SKU, err)
		}
		categoryID, err := ensure(p.Category)
		if err != nil {
			return sum, err
		}

		_, err = catalog.CreateProduct(ctx, domain.Product{
			Name:        p.Name,
			SKU:         p.SKU,
			Price:       price,
			CategoryID:  categoryID,
			Description: p.Description,
		})
		switch {
		case errors.Is(err, service.ErrProductSKUExists):
			zap.L().Debug("product exists", zap.String("sku", p.SKU))
		case err != nil:
			return sum, fmt.Errorf("catalog.CreateProduct(%s) -> %w", p.SKU, err)
		default:
			sum.Products++
		}
	}

	for _, pos := range f.PointsOfSales {
		_, err := catalog.CreatePointOfSales(ctx, domain.PointOfSales{
			Name:     pos.Name,
			Location: pos.Location.toDomain(),
		})
		switch {
		case errors.Is(err, service.ErrPointOfSalesNameExists):
			zap.L().Debug("point of sales exists", zap.String("name", pos.Name))
		case err != nil:
			return sum, fmt.Errorf("catalog.CreatePointOfSales(%s) -> %w", pos.Name, err)
		default:
			sum.PointsOfSales++
		}
	}

	for _, c := range f.Customers {
		birthDate, err := time.Parse(time.DateOnly, c.BirthDate)
		if err != nil {
			return sum, fmt.Errorf("customer %s: birth_date -> %w", c.Email, err)
		}

		_, err = customers.RegisterCustomer(ctx, domain.Client{
			Email:       c.Email,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			FiscalCode:  c.FiscalCode,
			PhoneNumber: c.PhoneNumber,
			BirthDate:   birthDate,
			Location:    c.Location.toDomain(),
		}, c.Tier)
		switch {
		case errors.Is(err, service.ErrClientEmailExists), errors.Is(err, service.ErrClientFiscalCodeExists):
			zap.L().Debug("customer exists", zap.String("email", c.Email))
		case err != nil:
			return sum, fmt.Errorf("customers.RegisterCustomer(%s) -> %w", c.Email, err)
		default:
			sum.Customers++
		}
	}

	return sum, nil
}
