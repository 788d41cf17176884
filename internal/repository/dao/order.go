package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Order struct {
	ID             uint `gorm:"primaryKey"`
	PointOfSalesID uint `gorm:"index;not null"`
	PointOfSales   *PointOfSales
	ProductID      uint `gorm:"index;not null"`
	Product        *Product
	TotalQuantity  int           `gorm:"not null;check:total_quantity > 0"`
	Clients        []OrderClient `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Status         string        `gorm:"index;not null;default:sent"`
	Courier        string        `gorm:"not null"`
	Note           string        `gorm:"size:500"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderClient is the share of an order allocated to one client.
type OrderClient struct {
	ID            uint    `gorm:"primaryKey"`
	OrderID       uint    `gorm:"uniqueIndex:idx_order_client;not null"`
	ClientID      uint    `gorm:"uniqueIndex:idx_order_client;index;not null"`
	Client        *Client `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity      int     `gorm:"not null;check:quantity > 0"`
	PointsAwarded int     `gorm:"not null;default:0"`
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

func (d *OrderDAO) preloaded(ctx context.Context) *gorm.DB {
	return conn(ctx, d.db).
		Preload("PointOfSales").
		Preload("Product.Category").
		Preload("Clients", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_clients.id")
		}).
		Preload("Clients.Client.AffiliateProgram")
}

// Insert creates the order together with its allocations.
func (d *OrderDAO) Insert(ctx context.Context, order Order) (Order, error) {
	clients := order.Clients
	order.PointOfSales = nil
	order.Product = nil
	order.Clients = nil

	err := NewTxManager(d.db).InTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, d.db)

		if err := db.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		for i := range clients {
			clients[i].ID = 0
			clients[i].OrderID = order.ID
			clients[i].Client = nil
		}
		if len(clients) > 0 {
			if err := db.Omit(clause.Associations).Create(&clients).Error; err != nil {
				return err
			}
		}
		order.Clients = clients

		return nil
	})
	if err != nil {
		return Order{}, err
	}

	return order, nil
}

func (d *OrderDAO) FindByID(ctx context.Context, id uint) (Order, error) {
	var order Order

	result := d.preloaded(ctx).First(&order, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Order{}, ErrOrderNotFound
		}

		return Order{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindAll(ctx context.Context) ([]Order, error) {
	var orders []Order

	if err := d.preloaded(ctx).Order("id").Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}

// FindByClient returns the orders the client appears in. Each order carries
// only that client's allocation.
func (d *OrderDAO) FindByClient(ctx context.Context, clientID uint) ([]Order, error) {
	var orders []Order

	result := conn(ctx, d.db).
		Preload("PointOfSales").
		Preload("Product.Category").
		Preload("Clients", "client_id = ?", clientID).
		Where("id IN (?)", conn(ctx, d.db).Model(&OrderClient{}).Select("order_id").Where("client_id = ?", clientID)).
		Order("id").
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// CountByClient counts the orders the client appears in.
func (d *OrderDAO) CountByClient(ctx context.Context, clientID uint) (int64, error) {
	var count int64

	result := conn(ctx, d.db).Model(&OrderClient{}).Where("client_id = ?", clientID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// CountByClients is CountByClient for many clients in one query. Clients with
// no orders are absent from the result.
func (d *OrderDAO) CountByClients(ctx context.Context, clientIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(clientIDs))
	if len(clientIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ClientID uint
		Total    int64
	}
	result := conn(ctx, d.db).Model(&OrderClient{}).
		Select("client_id, COUNT(*) AS total").
		Where("client_id IN ?", clientIDs).
		Group("client_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	for _, row := range rows {
		counts[row.ClientID] = row.Total
	}

	return counts, nil
}

func (d *OrderDAO) SetAllocationPoints(ctx context.Context, orderID, clientID uint, points int) error {
	result := conn(ctx, d.db).Model(&OrderClient{}).
		Where("order_id = ? AND client_id = ?", orderID, clientID).
		Update("points_awarded", points)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Update writes the order columns. When replaceClients is set the allocation
// list is replaced by order.Clients.
func (d *OrderDAO) Update(ctx context.Context, order Order, replaceClients bool) error {
	db := conn(ctx, d.db)

	result := db.Model(&Order{ID: order.ID}).
		Select("point_of_sales_id", "product_id", "total_quantity", "status", "courier", "note").
		Updates(&Order{
			PointOfSalesID: order.PointOfSalesID,
			ProductID:      order.ProductID,
			TotalQuantity:  order.TotalQuantity,
			Status:         order.Status,
			Courier:        order.Courier,
			Note:           order.Note,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	if !replaceClients {
		return nil
	}

	if err := db.Where("order_id = ?", order.ID).Delete(&OrderClient{}).Error; err != nil {
		return err
	}

	clients := make([]OrderClient, len(order.Clients))
	for i, c := range order.Clients {
		clients[i] = OrderClient{
			OrderID:       order.ID,
			ClientID:      c.ClientID,
			Quantity:      c.Quantity,
			PointsAwarded: c.PointsAwarded,
		}
	}
	if len(clients) == 0 {
		return nil
	}

	return db.Omit(clause.Associations).Create(&clients).Error
}

func (d *OrderDAO) Delete(ctx context.Context, id uint) error {
	db := conn(ctx, d.db)

	if err := db.Where("order_id = ?", id).Delete(&OrderClient{}).Error; err != nil {
		return err
	}

	result := db.Delete(&Order{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}
