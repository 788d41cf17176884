package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AffiliateTier struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AffiliateProgram struct {
	ID         uint   `gorm:"primaryKey"`
	ClientID   uint   `gorm:"uniqueIndex;not null"`
	Tier       string `gorm:"index;not null;default:standard"`
	Points     int    `gorm:"not null;default:0;check:points >= 0"`
	CardNumber string `gorm:"uniqueIndex;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type AffiliateProgramDAO struct {
	db *gorm.DB
}

func NewAffiliateProgramDAO(db *gorm.DB) *AffiliateProgramDAO {
	return &AffiliateProgramDAO{
		db: db,
	}
}

func (d *AffiliateProgramDAO) FindByID(ctx context.Context, id uint) (AffiliateProgram, error) {
	var program AffiliateProgram

	result := conn(ctx, d.db).First(&program, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AffiliateProgram{}, ErrAffiliateProgramNotFound
		}

		return AffiliateProgram{}, result.Error
	}

	return program, nil
}

func (d *AffiliateProgramDAO) FindByClientID(ctx context.Context, clientID uint) (AffiliateProgram, error) {
	var program AffiliateProgram

	result := conn(ctx, d.db).Where("client_id = ?", clientID).First(&program)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AffiliateProgram{}, ErrAffiliateProgramNotFound
		}

		return AffiliateProgram{}, result.Error
	}

	return program, nil
}

func (d *AffiliateProgramDAO) FindTierByName(ctx context.Context, name string) (AffiliateTier, error) {
	var tier AffiliateTier

	result := conn(ctx, d.db).Where("name = ?", name).First(&tier)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AffiliateTier{}, ErrTierNotFound
		}

		return AffiliateTier{}, result.Error
	}

	return tier, nil
}

func (d *AffiliateProgramDAO) FindAllTiers(ctx context.Context) ([]AffiliateTier, error) {
	var tiers []AffiliateTier

	if err := conn(ctx, d.db).Order("id").Find(&tiers).Error; err != nil {
		return nil, err
	}

	return tiers, nil
}

// UpsertTier creates the tier or refreshes its description.
func (d *AffiliateProgramDAO) UpsertTier(ctx context.Context, tier AffiliateTier) (AffiliateTier, error) {
	result := conn(ctx, d.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
	}).Create(&tier)
	if result.Error != nil {
		return AffiliateTier{}, result.Error
	}

	return d.FindTierByName(ctx, tier.Name)
}

func (d *AffiliateProgramDAO) DeleteTier(ctx context.Context, name string) error {
	return conn(ctx, d.db).Where("name = ?", name).Delete(&AffiliateTier{}).Error
}

func (d *AffiliateProgramDAO) Insert(ctx context.Context, program AffiliateProgram) (AffiliateProgram, error) {
	result := conn(ctx, d.db).Create(&program)
	if result.Error != nil {
		return AffiliateProgram{}, mapUniqueViolation(result.Error, clientUniqueColumns)
	}

	return program, nil
}

// IncrementPoints adds amount on the database side, so concurrent increments
// never overwrite each other.
func (d *AffiliateProgramDAO) IncrementPoints(ctx context.Context, id uint, amount int) error {
	result := conn(ctx, d.db).Model(&AffiliateProgram{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAffiliateProgramNotFound
	}

	return nil
}

// DeductPoints subtracts amount on the database side, stopping at zero.
func (d *AffiliateProgramDAO) DeductPoints(ctx context.Context, id uint, amount int) error {
	result := conn(ctx, d.db).Model(&AffiliateProgram{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("CASE WHEN points >= ? THEN points - ? ELSE 0 END", amount, amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAffiliateProgramNotFound
	}

	return nil
}

// ReassignTier moves the client's program from tier `from` to tier `to`. It
// reports false when the program was not on `from`, which makes repeated
// calls harmless.
func (d *AffiliateProgramDAO) ReassignTier(ctx context.Context, clientID uint, from, to string) (bool, error) {
	result := conn(ctx, d.db).Model(&AffiliateProgram{}).
		Where("client_id = ? AND tier = ?", clientID, from).
		Update("tier", to)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
