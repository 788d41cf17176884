package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type PointOfSales struct {
	ID        uint     `gorm:"primaryKey"`
	Name      string   `gorm:"uniqueIndex;not null"`
	Location  Location `gorm:"embedded;embeddedPrefix:location_"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PointOfSales) TableName() string {
	return "points_of_sales"
}

type PointOfSalesDAO struct {
	db *gorm.DB
}

func NewPointOfSalesDAO(db *gorm.DB) *PointOfSalesDAO {
	return &PointOfSalesDAO{
		db: db,
	}
}

func (d *PointOfSalesDAO) Insert(ctx context.Context, pos PointOfSales) (PointOfSales, error) {
	if err := conn(ctx, d.db).Create(&pos).Error; err != nil {
		return PointOfSales{}, mapUniqueViolation(err, map[string]error{"name": ErrPointOfSalesNameExists})
	}

	return pos, nil
}

func (d *PointOfSalesDAO) FindByID(ctx context.Context, id uint) (PointOfSales, error) {
	var pos PointOfSales

	result := conn(ctx, d.db).First(&pos, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return PointOfSales{}, ErrPointOfSalesNotFound
		}

		return PointOfSales{}, result.Error
	}

	return pos, nil
}

func (d *PointOfSalesDAO) FindAll(ctx context.Context) ([]PointOfSales, error) {
	var points []PointOfSales

	if err := conn(ctx, d.db).Order("id").Find(&points).Error; err != nil {
		return nil, err
	}

	return points, nil
}
