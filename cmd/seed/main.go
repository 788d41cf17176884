// Command seed loads catalog, point of sale and customer fixtures.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed --fixtures ./cmd/seed/fixtures.yml --token-user 1
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"go.uber.org/zap"

	"github.com/workhub/orders-api/internal/config"
	"github.com/workhub/orders-api/internal/db"
	"github.com/workhub/orders-api/internal/logger"
	"github.com/workhub/orders-api/internal/pkg/jwthelper"
	"github.com/workhub/orders-api/internal/repository"
	"github.com/workhub/orders-api/internal/repository/dao"
	"github.com/workhub/orders-api/internal/service"
)

func main() {
	configPath := flag.String("config", "./cmd/app/config.yml", "path to the app config")
	fixturesPath := flag.String("fixtures", "./cmd/seed/fixtures.yml", "path to the fixtures file")
	tokenUser := flag.Uint("token-user", 0, "print a bearer token for this user id after seeding")
	flag.Parse()

	if err := run(*configPath, *fixturesPath, *tokenUser); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, fixturesPath string, tokenUser uint) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}
	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	fixtures, err := LoadFixtures(fixturesPath)
	if err != nil {
		return fmt.Errorf("failed to load fixtures -> %w", err)
	}

	gormDB, err := db.Open(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	if err = db.Migrate(gormDB); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	products := repository.NewProductRepository(dao.NewProductDAO(gormDB))
	points := repository.NewPointOfSalesRepository(dao.NewPointOfSalesDAO(gormDB))
	programs := repository.NewAffiliateProgramRepository(dao.NewAffiliateProgramDAO(gormDB))
	clients := repository.NewClientRepository(dao.NewClientDAO(gormDB))
	orders := repository.NewOrderRepository(dao.NewOrderDAO(gormDB))

	sum, err := Apply(context.Background(), fixtures,
		service.NewCatalogService(products, points, programs),
		service.NewCustomerService(clients, programs, orders),
	)
	if err != nil {
		return err
	}

	zap.L().Info("fixtures loaded",
		zap.Int("categories", sum.Categories),
		zap.Int("products", sum.Products),
		zap.Int("points_of_sale", sum.PointsOfSales),
		zap.Int("customers", sum.Customers),
	)

	if tokenUser > 0 {
		if conf.API.JWTSigningKey == "" {
			return fmt.Errorf("api.jwt_signing_key is empty, no token needed")
		}
		token, err := jwthelper.GenerateToken([]byte(conf.API.JWTSigningKey), tokenUser, "seed")
		if err != nil {
			return fmt.Errorf("jwthelper.GenerateToken -> %w", err)
		}
		fmt.Println(token)
	}

	return nil
}
