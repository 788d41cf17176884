package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/loyalty"
	"github.com/workhub/orders-api/internal/repository"
	"github.com/workhub/orders-api/internal/repository/dao"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	stores   Stores
	calc     *loyalty.Calculator
	orders   *OrderService
	query    *OrderQueryService
	customer *CustomerService
	catalog  *CatalogService

	product domain.Product // 12.50 per unit
	pos     domain.PointOfSales
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, dao.InitTables(db))

	stores := Stores{
		Orders:        repository.NewOrderRepository(dao.NewOrderDAO(db)),
		Clients:       repository.NewClientRepository(dao.NewClientDAO(db)),
		Programs:      repository.NewAffiliateProgramRepository(dao.NewAffiliateProgramDAO(db)),
		Products:      repository.NewProductRepository(dao.NewProductDAO(db)),
		PointsOfSales: repository.NewPointOfSalesRepository(dao.NewPointOfSalesDAO(db)),
		Tx:            repository.NewTransactionManager(db),
	}

	calc, err := loyalty.NewCalculator(loyalty.DefaultRules())
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		stores:   stores,
		calc:     calc,
		orders:   NewOrderService(stores, calc, OrderOptions{}),
		query:    NewOrderQueryService(stores.Orders, calc),
		customer: NewCustomerService(stores.Clients, stores.Programs, stores.Orders),
		catalog:  NewCatalogService(stores.Products, stores.PointsOfSales, stores.Programs),
	}

	require.NoError(t, env.catalog.EnsureTiers(ctx))

	category, err := env.catalog.CreateCategory(ctx, "Living")
	require.NoError(t, err)
	env.product, err = env.catalog.CreateProduct(ctx, domain.Product{
		Name:       "LACK side table",
		SKU:        "LACK-001",
		Price:      decimal.RequireFromString("12.50"),
		CategoryID: category.ID,
	})
	require.NoError(t, err)
	env.pos, err = env.catalog.CreatePointOfSales(ctx, domain.PointOfSales{
		Name:     "Milano Centrale",
		Location: domain.Location{City: "Milano", Country: "IT"},
	})
	require.NoError(t, err)

	return env
}

var clientSeq int

func newClient(tierSuffix string) domain.Client {
	clientSeq++
	return domain.Client{
		Email:       fmt.Sprintf("client%d-%s@example.com", clientSeq, tierSuffix),
		FirstName:   "Luca",
		LastName:    "Verdi",
		FiscalCode:  fmt.Sprintf("VRDLCU85M01H5%03d", clientSeq),
		PhoneNumber: "+39011223344",
		BirthDate:   time.Date(1985, 8, 1, 0, 0, 0, 0, time.UTC),
		Location:    domain.Location{Address: "Corso Francia 3", City: "Torino", State: "TO", ZipCode: "10100", Country: "IT"},
	}
}

// register creates a customer; tier "none" makes a non-member.
func (e *testEnv) register(t *testing.T, tier string) domain.Client {
	t.Helper()

	client, err := e.customer.RegisterCustomer(context.Background(), newClient(tier), tier)
	require.NoError(t, err)

	return client
}

func (e *testEnv) order(clients ...domain.Allocation) domain.NewOrder {
	total := 0
	for _, c := range clients {
		total += c.Quantity
	}

	return domain.NewOrder{
		PointOfSalesID: e.pos.ID,
		ProductID:      e.product.ID,
		TotalQuantity:  total,
		Clients:        clients,
	}
}

func (e *testEnv) program(t *testing.T, clientID uint) domain.AffiliateProgram {
	t.Helper()

	program, err := e.stores.Programs.FindByClientID(context.Background(), clientID)
	require.NoError(t, err)

	return program
}

func (e *testEnv) orderCount(t *testing.T) int64 {
	t.Helper()

	var count int64
	require.NoError(t, e.db.Model(&dao.Order{}).Count(&count).Error)

	return count
}
