package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Location struct {
	Address string `gorm:"not null"`
	City    string `gorm:"not null"`
	State   string `gorm:"not null"`
	ZipCode string `gorm:"not null"`
	Country string `gorm:"not null"`
}

type Client struct {
	ID uint `gorm:"primaryKey"`

	Email       string    `gorm:"uniqueIndex;not null"`
	FirstName   string    `gorm:"index;not null"`
	LastName    string    `gorm:"index;not null"`
	FiscalCode  string    `gorm:"uniqueIndex;not null"`
	PhoneNumber string    `gorm:"index;not null"`
	BirthDate   time.Time `gorm:"not null"`
	Location    Location  `gorm:"embedded;embeddedPrefix:location_"`

	AffiliateProgram *AffiliateProgram `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ClientDAO struct {
	db *gorm.DB
}

func NewClientDAO(db *gorm.DB) *ClientDAO {
	return &ClientDAO{
		db: db,
	}
}

var clientUniqueColumns = map[string]error{
	"email":       ErrClientEmailExists,
	"fiscal_code": ErrClientFiscalCodeExists,
	"card_number": ErrCardNumberExists,
}

// Insert creates the client and, when client.AffiliateProgram is set, its
// program, both in one transaction.
func (d *ClientDAO) Insert(ctx context.Context, client Client) (Client, error) {
	program := client.AffiliateProgram
	client.AffiliateProgram = nil

	err := NewTxManager(d.db).InTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, d.db)

		if err := db.Create(&client).Error; err != nil {
			return mapUniqueViolation(err, clientUniqueColumns)
		}

		if program == nil {
			return nil
		}

		program.ClientID = client.ID
		if err := db.Create(program).Error; err != nil {
			return mapUniqueViolation(err, clientUniqueColumns)
		}
		client.AffiliateProgram = program

		return nil
	})
	if err != nil {
		return Client{}, err
	}

	return client, nil
}

func (d *ClientDAO) FindByID(ctx context.Context, id uint) (Client, error) {
	var client Client

	result := conn(ctx, d.db).Preload("AffiliateProgram").First(&client, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Client{}, ErrClientNotFound
		}

		return Client{}, result.Error
	}

	return client, nil
}

func (d *ClientDAO) FindAll(ctx context.Context) ([]Client, error) {
	var clients []Client

	result := conn(ctx, d.db).Preload("AffiliateProgram").Order("id").Find(&clients)
	if result.Error != nil {
		return nil, result.Error
	}

	return clients, nil
}

// FindMissing returns the ids in ids that do not match any client.
func (d *ClientDAO) FindMissing(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint
	result := conn(ctx, d.db).Model(&Client{}).Where("id IN ?", ids).Pluck("id", &found)
	if result.Error != nil {
		return nil, result.Error
	}

	exists := make(map[uint]struct{}, len(found))
	for _, id := range found {
		exists[id] = struct{}{}
	}

	var missing []uint
	for _, id := range ids {
		if _, ok := exists[id]; !ok {
			missing = append(missing, id)
		}
	}

	return missing, nil
}

// Update writes the contact and address fields. The affiliate program is not touched.
func (d *ClientDAO) Update(ctx context.Context, client Client) (Client, error) {
	result := conn(ctx, d.db).Model(&Client{ID: client.ID}).
		Select("email", "first_name", "last_name", "fiscal_code", "phone_number", "birth_date",
			"location_address", "location_city", "location_state", "location_zip_code", "location_country").
		Updates(&client)
	if result.Error != nil {
		return Client{}, mapUniqueViolation(result.Error, clientUniqueColumns)
	}
	if result.RowsAffected == 0 {
		return Client{}, ErrClientNotFound
	}

	return d.FindByID(ctx, client.ID)
}

// Delete removes the client and their affiliate program in one transaction.
// Clients that appear in any order are kept and ErrClientHasOrders is returned.
func (d *ClientDAO) Delete(ctx context.Context, id uint) error {
	return NewTxManager(d.db).InTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, d.db)

		var orders int64
		if err := db.Model(&OrderClient{}).Where("client_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return ErrClientHasOrders
		}

		if err := db.Where("client_id = ?", id).Delete(&AffiliateProgram{}).Error; err != nil {
			return err
		}

		result := db.Delete(&Client{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrClientNotFound
		}

		return nil
	})
}
