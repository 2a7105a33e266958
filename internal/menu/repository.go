package menu

import (
	"context"
	"errors"
	"fmt"

	"resto-backend/internal/apperr"
	"resto-backend/internal/audit"
	"resto-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	ListAvailable(ctx context.Context) ([]models.MenuItem, error)
	ListAll(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id uint) (*models.MenuItem, error)
	Create(ctx context.Context, actor audit.Actor, items ...*models.MenuItem) error
	Update(ctx context.Context, actor audit.Actor, id uint, mutate func(*models.MenuItem) error) (*models.MenuItem, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
}

const entityMenuItem = "menu_item"

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Order("category asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list available menu: %w", err)
	}
	return items, nil
}

func (r *GormRepository) ListAll(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.db.WithContext(ctx).Order("category asc, id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

func (r *GormRepository) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	return findItem(r.db.WithContext(ctx), id)
}

func findItem(tx *gorm.DB, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := tx.Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("menu item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find menu item: %w", err)
	}
	return &item, nil
}

func (r *GormRepository) Create(ctx context.Context, actor audit.Actor, items ...*models.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(items).Error; err != nil {
			return fmt.Errorf("create menu items: %w", err)
		}
		for _, item := range items {
			err := audit.WriteLog(tx, audit.LogOptions{
				Actor:       actor,
				EntityType:  entityMenuItem,
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: "menu item created: " + item.Name,
				After:       item,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepository) Update(ctx context.Context, actor audit.Actor, id uint, mutate func(*models.MenuItem) error) (*models.MenuItem, error) {
	var updated *models.MenuItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		before := *item

		if err := mutate(item); err != nil {
			return err
		}
		if err := tx.Save(item).Error; err != nil {
			return fmt.Errorf("save menu item: %w", err)
		}

		updated = item
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  entityMenuItem,
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: "menu item updated: " + item.Name,
			Before:      before,
			After:       item,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *GormRepository) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.MenuItem{}, item.ID).Error; err != nil {
			return fmt.Errorf("delete menu item: %w", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  entityMenuItem,
			EntityID:    item.ID,
			Action:      models.AuditActionDelete,
			Description: "menu item deleted: " + item.Name,
			Before:      item,
		})
	})
}
