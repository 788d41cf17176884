package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/workhub/orders-api/internal/domain"
)

// Upper-case segments joined by dashes, with at least one digit somewhere.
var skuRegexp = regexp2.MustCompile(`^(?=.*\d)[A-Z0-9]+(?:-[A-Z0-9]+)*$`, regexp2.None)

type CreateProductRequest struct {
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"12.50"`
	CategoryID  uint            `json:"category_id"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
}

func (req *CreateProductRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.SKU, validation.Required, validation.Length(3, 32), matchRegexp2(skuRegexp, "must be upper-case segments with at least one digit")),
		validation.Field(&req.Price, validation.By(func(interface{}) error {
			if !req.Price.IsPositive() {
				return errors.New("must be greater than 0")
			}
			return nil
		})),
		validation.Field(&req.CategoryID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Description, validation.Length(0, 1000)),
		validation.Field(&req.Image, validation.Length(0, 500)),
	)

	return collect(err)
}

func (req *CreateProductRequest) ToDomain() domain.Product {
	return domain.Product{
		Name:        req.Name,
		SKU:         req.SKU,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Image:       req.Image,
	}
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

func (req *CreateCategoryRequest) Validate() error {
	return collect(validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 50)),
	))
}

type CreatePointOfSalesRequest struct {
	Name     string          `json:"name"`
	Location LocationRequest `json:"location"`
}

func (req *CreatePointOfSalesRequest) Validate() error {
	return collect(validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Location),
	))
}

func (req *CreatePointOfSalesRequest) ToDomain() domain.PointOfSales {
	return domain.PointOfSales{
		Name:     req.Name,
		Location: req.Location.ToDomain(),
	}
}
