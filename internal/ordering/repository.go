package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resto-backend/internal/apperr"
	"resto-backend/internal/audit"
	"resto-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuildFunc turns the locked menu rows into the order to insert.
type BuildFunc func(menu map[uint]models.MenuItem) (*models.Order, error)

type Repository interface {
	Place(ctx context.Context, menuIDs []uint, build BuildFunc) (*models.Order, error)
	GetStatus(ctx context.Context, id uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor audit.Actor, id uint, to models.OrderStatus, check func(current models.OrderStatus) error) (models.OrderStatus, error)
	List(ctx context.Context, f ListFilter) ([]models.Order, int64, error)
	Get(ctx context.Context, id uint) (*models.Order, error)
}

const entityOrder = "order"

type GormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *GormRepository) Place(ctx context.Context, menuIDs []uint, build BuildFunc) (*models.Order, error) {
	var order *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// FOR SHARE keeps price and availability stable until commit
		// without serializing concurrent orders for the same dish.
		var rows []models.MenuItem
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id IN ?", menuIDs).
			Find(&rows).Error
		if err != nil {
			return fmt.Errorf("load menu items: %w", err)
		}
		menu := make(map[uint]models.MenuItem, len(rows))
		for _, mi := range rows {
			menu[mi.ID] = mi
		}

		o, err := build(menu)
		if err != nil {
			return err
		}
		now := r.now()
		o.OrderDate = now
		o.Payment.PaymentDate = now

		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
		}
		if err := tx.Omit(clause.Associations).Create(&o.Items).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		o.Payment.OrderID = o.ID
		if err := tx.Create(o.Payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if o.CustomerEmail != "" {
			if err := addLoyalty(tx, o); err != nil {
				return err
			}
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// addLoyalty credits the order to the customer keyed by email, creating the
// row on first order. The upsert is a single statement so concurrent first
// orders for one email cannot create two customers or lose points.
func addLoyalty(tx *gorm.DB, o *models.Order) error {
	customer := models.Customer{
		Name:          o.CustomerName,
		Email:         o.CustomerEmail,
		Phone:         o.CustomerPhone,
		LoyaltyPoints: LoyaltyPoints(o.TotalAmount),
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]any{
			"loyalty_points": gorm.Expr("customers.loyalty_points + excluded.loyalty_points"),
			"updated_at":     gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&customer).Error
	if err != nil {
		return fmt.Errorf("update loyalty points: %w", err)
	}
	return nil
}

func (r *GormRepository) GetStatus(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Select("id", "order_status", "order_date").
		Where("id = ?", id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order status: %w", err)
	}
	return &order, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, actor audit.Actor, id uint, to models.OrderStatus, check func(current models.OrderStatus) error) (models.OrderStatus, error) {
	var from models.OrderStatus
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "order_status").
			Where("id = ?", id).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("order", id)
		}
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		from = order.Status

		if err := check(from); err != nil {
			return err
		}

		err = tx.Model(&models.Order{}).
			Where("id = ?", id).
			Updates(map[string]any{"order_status": to, "updated_at": r.now()}).Error
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  entityOrder,
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("order #%d status %s -> %s", id, from, to),
			Before:      map[string]any{"status": from},
			After:       map[string]any{"status": to},
		})
	})
	if err != nil {
		return "", err
	}
	return from, nil
}

func (r *GormRepository) List(ctx context.Context, f ListFilter) ([]models.Order, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Order{})
		if f.Status != "" {
			q = q.Where("order_status = ?", f.Status)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	var orders []models.Order
	err := scoped().Preload("Payment").
		Order("order_date DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func (r *GormRepository) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Payment").
		Where("id = ?", id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}
