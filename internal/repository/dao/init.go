package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Category{},
		&Product{},
		&PointOfSales{},
		&Client{},
		&AffiliateTier{},
		&AffiliateProgram{},
		&Order{},
		&OrderClient{},
	)
}
