package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/iter"
	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/logger"
	"github.com/workhub/orders-api/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const DefaultPremiumAfterOrders = 10

type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, id uint) (domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByClient(ctx context.Context, clientID uint) ([]domain.ClientOrder, error)
	CountByClient(ctx context.Context, clientID uint) (int64, error)
	CountByClients(ctx context.Context, clientIDs []uint) (map[uint]int64, error)
	SetAllocationPoints(ctx context.Context, orderID, clientID uint, points int) error
	Update(ctx context.Context, order domain.Order, replaceClients bool) (domain.Order, error)
	Delete(ctx context.Context, id uint) error
}

type ClientRepository interface {
	Create(ctx context.Context, client domain.Client) (domain.Client, error)
	FindByID(ctx context.Context, id uint) (domain.Client, error)
	FindAll(ctx context.Context) ([]domain.Client, error)
	FindMissing(ctx context.Context, ids []uint) ([]uint, error)
	Update(ctx context.Context, client domain.Client) (domain.Client, error)
	Delete(ctx context.Context, id uint) error
}

type AffiliateProgramRepository interface {
	Create(ctx context.Context, program domain.AffiliateProgram) (domain.AffiliateProgram, error)
	FindByID(ctx context.Context, id uint) (domain.AffiliateProgram, error)
	FindByClientID(ctx context.Context, clientID uint) (domain.AffiliateProgram, error)
	FindTierByName(ctx context.Context, tier domain.Tier) (domain.AffiliateTier, error)
	FindAllTiers(ctx context.Context) ([]domain.AffiliateTier, error)
	UpsertTier(ctx context.Context, tier domain.AffiliateTier) (domain.AffiliateTier, error)
	IncrementPoints(ctx context.Context, id uint, amount int) error
	DeductPoints(ctx context.Context, id uint, amount int) error
	ReassignClientTier(ctx context.Context, clientID uint, tier domain.Tier) (bool, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id uint) (domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	CreateCategory(ctx context.Context, name string) (domain.Category, error)
	FindCategoryByName(ctx context.Context, name string) (domain.Category, error)
	FindAllCategories(ctx context.Context) ([]domain.Category, error)
}

type PointOfSalesRepository interface {
	Create(ctx context.Context, pos domain.PointOfSales) (domain.PointOfSales, error)
	FindByID(ctx context.Context, id uint) (domain.PointOfSales, error)
	FindAll(ctx context.Context) ([]domain.PointOfSales, error)
}

type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type PointsCalculator interface {
	Calculate(amount decimal.Decimal, tier domain.Tier) int
}

// Stores groups the repositories the order services work on.
type Stores struct {
	Orders        OrderRepository
	Clients       ClientRepository
	Programs      AffiliateProgramRepository
	Products      ProductRepository
	PointsOfSales PointOfSalesRepository
	Tx            TransactionManager
}

type OrderOptions struct {
	// PremiumAfterOrders is the order count at which a standard client is promoted.
	PremiumAfterOrders int64
	DefaultCourier     string
}

type OrderService struct {
	stores Stores
	calc   PointsCalculator
	opts   OrderOptions
	tracer trace.Tracer
}

func NewOrderService(stores Stores, calc PointsCalculator, opts OrderOptions) *OrderService {
	if opts.PremiumAfterOrders <= 0 {
		opts.PremiumAfterOrders = DefaultPremiumAfterOrders
	}
	if opts.DefaultCourier == "" {
		opts.DefaultCourier = domain.DefaultCourier
	}

	return &OrderService{
		stores: stores,
		calc:   calc,
		opts:   opts,
		tracer: otel.Tracer("github.com/workhub/orders-api/internal/service"),
	}
}

// CreateOrder validates and stores the order, then awards points and
// evaluates tier promotion for every allocated client independently. A
// client whose accrual fails is reported in the result; the order stands.
func (s *OrderService) CreateOrder(ctx context.Context, in domain.NewOrder) (domain.CreateOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := validateNewOrder(in); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return domain.CreateOrderResult{}, err
	}

	if in.Status == "" {
		in.Status = domain.OrderStatusSent
	}
	if in.Courier == "" {
		in.Courier = s.opts.DefaultCourier
	}

	var (
		order   domain.Order
		product domain.Product
	)
	err := s.stores.Tx.InTransaction(ctx, func(ctx context.Context) error {
		var err error

		product, err = s.stores.Products.FindByID(ctx, in.ProductID)
		if err != nil {
			return fmt.Errorf("s.stores.Products.FindByID -> %w", err)
		}

		if _, err = s.stores.PointsOfSales.FindByID(ctx, in.PointOfSalesID); err != nil {
			return fmt.Errorf("s.stores.PointsOfSales.FindByID -> %w", err)
		}

		missing, err := s.stores.Clients.FindMissing(ctx, clientIDs(in.Clients))
		if err != nil {
			return fmt.Errorf("s.stores.Clients.FindMissing -> %w", err)
		}
		if len(missing) > 0 {
			return &MissingClientsError{IDs: missing}
		}

		clients := make([]domain.Allocation, len(in.Clients))
		for i, a := range in.Clients {
			clients[i] = domain.Allocation{ClientID: a.ClientID, Quantity: a.Quantity}
		}

		order, err = s.stores.Orders.Create(ctx, domain.Order{
			PointOfSalesID: in.PointOfSalesID,
			ProductID:      in.ProductID,
			TotalQuantity:  in.TotalQuantity,
			Clients:        clients,
			Status:         in.Status,
			Courier:        in.Courier,
			Note:           in.Note,
		})
		if err != nil {
			return fmt.Errorf("s.stores.Orders.Create -> %w", err)
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order not created")
		return domain.CreateOrderResult{}, err
	}

	metrics.IncOrdersCreated()
	span.SetAttributes(
		attribute.Int("order.id", int(order.ID)),
		attribute.Int("order.clients", len(order.Clients)),
	)

	target := s.promotionTarget(ctx)

	accruals := iter.Map(order.Clients, func(a *domain.Allocation) domain.ClientAccrual {
		return s.accrue(ctx, order.ID, product, *a, target)
	})

	for _, a := range accruals {
		if a.Failed() {
			span.AddEvent("accrual failed", trace.WithAttributes(attribute.Int("client.id", int(a.ClientID))))
		}
	}

	stored, err := s.stores.Orders.FindByID(ctx, order.ID)
	if err != nil {
		// The order exists; fall back to what was inserted.
		logger.FromContext(ctx).Warn("reload created order", zap.Uint("order_id", order.ID), zap.Error(err))
		stored = order
		stored.Product = &product
	}

	return domain.CreateOrderResult{
		Order:    stored,
		Accruals: accruals,
	}, nil
}

// promotionTarget returns the premium tier when it is configured, or "" to
// disable promotion.
func (s *OrderService) promotionTarget(ctx context.Context) domain.Tier {
	tier, err := s.stores.Programs.FindTierByName(ctx, domain.TierPremium)
	if err != nil {
		if !errors.Is(err, ErrTierNotFound) {
			logger.FromContext(ctx).Warn("lookup premium tier, promotion disabled", zap.Error(err))
		}
		return ""
	}

	return tier.Name
}

func (s *OrderService) accrue(ctx context.Context, orderID uint, product domain.Product, a domain.Allocation, target domain.Tier) domain.ClientAccrual {
	result := domain.ClientAccrual{ClientID: a.ClientID}
	log := logger.FromContext(ctx).With(zap.Uint("order_id", orderID), zap.Uint("client_id", a.ClientID))

	fail := func(step string, err error) domain.ClientAccrual {
		result.Err = fmt.Errorf("%s -> %w", step, err)
		result.Error = result.Err.Error()
		log.Warn("client accrual failed", zap.Error(result.Err))
		metrics.ObserveAccrual(metrics.OutcomeFailed)
		return result
	}

	client, err := s.stores.Clients.FindByID(ctx, a.ClientID)
	if err != nil {
		return fail("s.stores.Clients.FindByID", err)
	}
	if !client.IsMember() {
		result.Skipped = domain.SkipNotMember
		metrics.ObserveAccrual(metrics.OutcomeSkipped)
		return result
	}

	program, err := s.stores.Programs.FindByID(ctx, client.AffiliateProgram.ID)
	if err != nil {
		if errors.Is(err, ErrAffiliateProgramNotFound) {
			result.Skipped = domain.SkipProgramMissing
			metrics.ObserveAccrual(metrics.OutcomeSkipped)
			return result
		}
		return fail("s.stores.Programs.FindByID", err)
	}
	result.Tier = program.Tier

	points := s.calc.Calculate(product.AmountFor(a.Quantity), program.Tier)
	if points > 0 {
		err = s.stores.Tx.InTransaction(ctx, func(ctx context.Context) error {
			if err := s.stores.Programs.IncrementPoints(ctx, program.ID, points); err != nil {
				return fmt.Errorf("s.stores.Programs.IncrementPoints -> %w", err)
			}
			if err := s.stores.Orders.SetAllocationPoints(ctx, orderID, a.ClientID, points); err != nil {
				return fmt.Errorf("s.stores.Orders.SetAllocationPoints -> %w", err)
			}
			return nil
		})
		if err != nil {
			return fail("accrue points", err)
		}
		result.Points = points
		metrics.AddPointsAwarded(program.Tier.String(), points)
	}

	if program.Tier == domain.TierStandard && target != "" {
		count, err := s.stores.Orders.CountByClient(ctx, a.ClientID)
		if err != nil {
			return fail("s.stores.Orders.CountByClient", err)
		}

		if count >= s.opts.PremiumAfterOrders {
			promoted, err := s.stores.Programs.ReassignClientTier(ctx, a.ClientID, target)
			if err != nil {
				return fail("s.stores.Programs.ReassignClientTier", err)
			}
			if promoted {
				result.Promoted = true
				result.Tier = target
				metrics.IncTierPromotion(target.String())
				log.Info("client promoted", zap.String("tier", target.String()), zap.Int64("orders", count))
			}
		}
	}

	metrics.ObserveAccrual(metrics.OutcomeAwarded)

	return result
}

func validateNewOrder(in domain.NewOrder) error {
	var errs []error

	if in.TotalQuantity < 1 {
		errs = append(errs, errors.New("total_quantity must be at least 1"))
	}
	if len(in.Clients) == 0 {
		errs = append(errs, errors.New("clients must not be empty"))
	}
	for i, a := range in.Clients {
		if a.Quantity < 1 {
			errs = append(errs, fmt.Errorf("clients[%d].quantity must be at least 1", i))
		}
	}
	if in.Status != "" && !in.Status.Valid() {
		errs = append(errs, fmt.Errorf("status %q is not valid", in.Status))
	}
	errs = append(errs, domain.ValidateAllocations(in.TotalQuantity, in.Clients)...)

	if len(errs) > 0 {
		return NewValidationError(errs...)
	}

	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (domain.Order, error) {
	order, err := s.stores.Orders.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.stores.Orders.FindByID -> %w", err)
	}

	return order, nil
}

// UpdateOrder applies a partial update. Once the order has awarded points its
// product and allocations can be resent unchanged but not modified.
func (s *OrderService) UpdateOrder(ctx context.Context, id uint, u domain.OrderUpdate) (domain.Order, error) {
	var updated domain.Order

	err := s.stores.Tx.InTransaction(ctx, func(ctx context.Context) error {
		order, err := s.stores.Orders.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("s.stores.Orders.FindByID -> %w", err)
		}

		changes := u.ChangesAllocations(order)
		if changes && order.HasAccruedPoints() {
			return ErrOrderLocked
		}

		if u.PointOfSalesID != nil {
			if _, err := s.stores.PointsOfSales.FindByID(ctx, *u.PointOfSalesID); err != nil {
				return fmt.Errorf("s.stores.PointsOfSales.FindByID -> %w", err)
			}
			order.PointOfSalesID = *u.PointOfSalesID
		}
		if u.ProductID != nil {
			if _, err := s.stores.Products.FindByID(ctx, *u.ProductID); err != nil {
				return fmt.Errorf("s.stores.Products.FindByID -> %w", err)
			}
			order.ProductID = *u.ProductID
		}
		if u.TotalQuantity != nil {
			order.TotalQuantity = *u.TotalQuantity
		}
		if u.Status != nil {
			order.Status = *u.Status
		}
		if u.Courier != nil {
			order.Courier = *u.Courier
		}
		if u.Note != nil {
			order.Note = *u.Note
		}

		replace := u.Clients != nil && changes
		if replace {
			missing, err := s.stores.Clients.FindMissing(ctx, clientIDs(u.Clients))
			if err != nil {
				return fmt.Errorf("s.stores.Clients.FindMissing -> %w", err)
			}
			if len(missing) > 0 {
				return &MissingClientsError{IDs: missing}
			}
			order.Clients = make([]domain.Allocation, len(u.Clients))
			for i, a := range u.Clients {
				order.Clients[i] = domain.Allocation{ClientID: a.ClientID, Quantity: a.Quantity}
			}
		}

		if err := validateNewOrder(domain.NewOrder{
			TotalQuantity: order.TotalQuantity,
			Clients:       order.Clients,
			Status:        order.Status,
		}); err != nil {
			return err
		}

		updated, err = s.stores.Orders.Update(ctx, order, replace)
		if err != nil {
			return fmt.Errorf("s.stores.Orders.Update -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return updated, nil
}

// DeleteOrder removes the order and takes back the points it awarded. Balances
// stop at zero and tiers are kept.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	reverted := 0

	err := s.stores.Tx.InTransaction(ctx, func(ctx context.Context) error {
		order, err := s.stores.Orders.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("s.stores.Orders.FindByID -> %w", err)
		}

		for _, a := range order.Clients {
			if a.PointsAwarded <= 0 {
				continue
			}

			program, err := s.stores.Programs.FindByClientID(ctx, a.ClientID)
			if errors.Is(err, ErrAffiliateProgramNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("s.stores.Programs.FindByClientID -> %w", err)
			}

			if err := s.stores.Programs.DeductPoints(ctx, program.ID, a.PointsAwarded); err != nil {
				return fmt.Errorf("s.stores.Programs.DeductPoints -> %w", err)
			}
			reverted += a.PointsAwarded
		}

		if err := s.stores.Orders.Delete(ctx, id); err != nil {
			return fmt.Errorf("s.stores.Orders.Delete -> %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	metrics.AddPointsReverted(reverted)

	return nil
}

func clientIDs(allocations []domain.Allocation) []uint {
	ids := make([]uint, len(allocations))
	for i, a := range allocations {
		ids[i] = a.ClientID
	}

	return ids
}
