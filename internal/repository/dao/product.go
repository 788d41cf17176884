package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"index;not null"`
	SKU         string          `gorm:"uniqueIndex;not null"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CategoryID  uint            `gorm:"index;not null"`
	Category    *Category
	Description string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProductDAO struct {
	db *gorm.DB
}

func NewProductDAO(db *gorm.DB) *ProductDAO {
	return &ProductDAO{
		db: db,
	}
}

func (d *ProductDAO) Insert(ctx context.Context, product Product) (Product, error) {
	db := conn(ctx, d.db)

	var count int64
	if err := db.Model(&Category{}).Where("id = ?", product.CategoryID).Count(&count).Error; err != nil {
		return Product{}, err
	}
	if count == 0 {
		return Product{}, ErrCategoryNotFound
	}

	product.Category = nil
	if err := db.Create(&product).Error; err != nil {
		return Product{}, mapUniqueViolation(err, map[string]error{"sku": ErrProductSKUExists})
	}

	return d.FindByID(ctx, product.ID)
}

func (d *ProductDAO) FindByID(ctx context.Context, id uint) (Product, error) {
	var product Product

	result := conn(ctx, d.db).Preload("Category").First(&product, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

func (d *ProductDAO) FindAll(ctx context.Context) ([]Product, error) {
	var products []Product

	if err := conn(ctx, d.db).Preload("Category").Order("id").Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

func (d *ProductDAO) InsertCategory(ctx context.Context, category Category) (Category, error) {
	if err := conn(ctx, d.db).Create(&category).Error; err != nil {
		return Category{}, mapUniqueViolation(err, map[string]error{"name": ErrCategoryExists})
	}

	return category, nil
}

func (d *ProductDAO) FindCategoryByName(ctx context.Context, name string) (Category, error) {
	var category Category

	result := conn(ctx, d.db).Where("name = ?", name).First(&category)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Category{}, ErrCategoryNotFound
		}

		return Category{}, result.Error
	}

	return category, nil
}

func (d *ProductDAO) FindAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category

	if err := conn(ctx, d.db).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}

	return categories, nil
}
