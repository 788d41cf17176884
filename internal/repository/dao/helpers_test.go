package dao

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One in-memory database per test, shared by the pool's connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, InitTables(db), "failed to migrate database schema")

	return db
}

type fixture struct {
	product Product
	pos     PointOfSales
}

func seedCatalog(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()

	category, err := NewProductDAO(db).InsertCategory(ctx, Category{Name: "Living"})
	require.NoError(t, err)

	product, err := NewProductDAO(db).Insert(ctx, Product{
		Name:       "LACK side table",
		SKU:        "LACK-001",
		Price:      decimal.RequireFromString("12.50"),
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	pos, err := NewPointOfSalesDAO(db).Insert(ctx, PointOfSales{
		Name:     "Milano Centrale",
		Location: Location{Address: "Piazza Duca d'Aosta 1", City: "Milano", State: "MI", ZipCode: "20124", Country: "IT"},
	})
	require.NoError(t, err)

	return fixture{product: product, pos: pos}
}

func newTestClient(n int) Client {
	return Client{
		Email:       fmt.Sprintf("client%d@example.com", n),
		FirstName:   "Mario",
		LastName:    fmt.Sprintf("Rossi%d", n),
		FiscalCode:  fmt.Sprintf("RSSMRA80A01F205%c", 'A'+rune(n%26)),
		PhoneNumber: "+39021234567",
		BirthDate:   time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		Location:    Location{Address: "Via Roma 1", City: "Milano", State: "MI", ZipCode: "20100", Country: "IT"},
	}
}

func insertMember(t *testing.T, db *gorm.DB, n int, tier string) Client {
	t.Helper()

	client := newTestClient(n)
	client.AffiliateProgram = &AffiliateProgram{Tier: tier, CardNumber: fmt.Sprintf("CARD-%d", n)}

	created, err := NewClientDAO(db).Insert(context.Background(), client)
	require.NoError(t, err)

	return created
}
