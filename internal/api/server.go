package api

import (
	"context"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/workhub/orders-api/docs"
	v1 "github.com/workhub/orders-api/internal/api/handler/v1"
	"github.com/workhub/orders-api/internal/api/middleware"
	"github.com/workhub/orders-api/internal/config"
	"github.com/workhub/orders-api/internal/idempotency"
	"github.com/workhub/orders-api/internal/metrics"
	"github.com/workhub/orders-api/internal/repository"
	"github.com/workhub/orders-api/internal/repository/dao"
	"github.com/workhub/orders-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Stream *v1.OrderStreamHandler

	catalog *service.CatalogService
}

func NewServer(conf *config.AppConfig, db *gorm.DB, calc service.PointsCalculator, store idempotency.Store) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		Stream: v1.NewOrderStreamHandler(),
	}

	s.MountMiddlewares()

	stores := initStores(db)
	s.catalog = service.NewCatalogService(stores.Products, stores.PointsOfSales, stores.Programs)

	orderHandler := s.initOrderHandler(stores, calc)
	customerHandler := v1.NewCustomerHandler(service.NewCustomerService(stores.Clients, stores.Programs, stores.Orders))
	catalogHandler := v1.NewCatalogHandler(s.catalog)
	s.MountHandlers(orderHandler, customerHandler, catalogHandler, store)

	return s
}

func initStores(db *gorm.DB) service.Stores {
	return service.Stores{
		Orders:        repository.NewOrderRepository(dao.NewOrderDAO(db)),
		Clients:       repository.NewClientRepository(dao.NewClientDAO(db)),
		Programs:      repository.NewAffiliateProgramRepository(dao.NewAffiliateProgramDAO(db)),
		Products:      repository.NewProductRepository(dao.NewProductDAO(db)),
		PointsOfSales: repository.NewPointOfSalesRepository(dao.NewPointOfSalesDAO(db)),
		Tx:            repository.NewTransactionManager(db),
	}
}

func (s *Server) initOrderHandler(stores service.Stores, calc service.PointsCalculator) *v1.OrderHandler {
	svc := service.NewOrderService(stores, calc, service.OrderOptions{
		PremiumAfterOrders: int64(s.Config.Loyalty.PremiumAfterOrders),
		DefaultCourier:     s.Config.Orders.DefaultCourier,
	})
	query := service.NewOrderQueryService(stores.Orders, calc)

	return v1.NewOrderHandler(svc, query, s.Stream)
}

// Bootstrap makes sure the affiliate tier definitions exist.
func (s *Server) Bootstrap(ctx context.Context) error {
	return s.catalog.EnsureTiers(ctx)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.RequestLogger())
	s.Router.Use(metrics.GinMiddleware())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(orderHandler *v1.OrderHandler, customerHandler *v1.CustomerHandler, catalogHandler *v1.CatalogHandler, store idempotency.Store) {
	const basePath = "/api/v1"

	auth := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	orders := s.Router.Group(basePath, auth.VerifyJWT())
	{
		orders.POST("/orders", middleware.Idempotency(store), orderHandler.HandleCreateOrder)
		orders.GET("/orders", orderHandler.HandleListOrders)
		orders.GET("/orders/stream", s.Stream.HandleOrderStream)
		orders.GET("/orders/:orderID", orderHandler.HandleGetOrder)
		orders.PUT("/orders/:orderID", orderHandler.HandleUpdateOrder)
		orders.DELETE("/orders/:orderID", orderHandler.HandleDeleteOrder)
	}

	customers := s.Router.Group(basePath, auth.VerifyJWT())
	{
		customers.POST("/customers", customerHandler.HandleRegisterCustomer)
		customers.GET("/customers", customerHandler.HandleListCustomers)
		customers.GET("/customers/:customerID", customerHandler.HandleGetCustomer)
		customers.PATCH("/customers/:customerID", customerHandler.HandleUpdateCustomer)
		customers.DELETE("/customers/:customerID", customerHandler.HandleDeleteCustomer)
		customers.GET("/affiliate-tiers", catalogHandler.HandleListTiers)
	}

	catalog := s.Router.Group(basePath, auth.VerifyJWT())
	{
		catalog.POST("/products", catalogHandler.HandleCreateProduct)
		catalog.GET("/products", catalogHandler.HandleListProducts)
		catalog.GET("/products/:productID", catalogHandler.HandleGetProduct)
		catalog.POST("/categories", catalogHandler.HandleCreateCategory)
		catalog.GET("/categories", catalogHandler.HandleListCategories)
		catalog.POST("/points-of-sale", catalogHandler.HandleCreatePointOfSales)
		catalog.GET("/points-of-sale", catalogHandler.HandleListPointsOfSales)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "WorkHub Orders API"
	docs.SwaggerInfo.Description = "Orders, affiliate points and loyalty tiers for the WorkHub network."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
