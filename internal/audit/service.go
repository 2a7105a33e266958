package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"resto-backend/internal/models"

	"gorm.io/gorm"
)

// Actor identifies the admin performing a change.
type Actor struct {
	UserID   uint
	UserName string
}

type LogOptions struct {
	Actor       Actor
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog records a change. Pass the transaction that performed the change
// so the log row commits or rolls back with it.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	// jsonb does not accept an empty string, so absent sides are stored as JSON null.
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		b, err := json.Marshal(opts.Before)
		if err != nil {
			return fmt.Errorf("encode audit before: %w", err)
		}
		beforeStr = string(b)
	}
	if opts.After != nil {
		b, err := json.Marshal(opts.After)
		if err != nil {
			return fmt.Errorf("encode audit after: %w", err)
		}
		afterStr = string(b)
	}

	log := models.AuditLog{
		UserID:      opts.Actor.UserID,
		UserName:    opts.Actor.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

type Filter struct {
	EntityType string
	EntityID   uint
	UserID     uint
	Limit      int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Limit(f.Limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
