package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resto-backend/internal/apperr"
	"resto-backend/internal/models"

	"gorm.io/gorm"
)

type Repository interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	CreateSession(ctx context.Context, sess *models.Session) error
	FindSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user", username)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *GormRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *GormRepository) CreateSession(ctx context.Context, sess *models.Session) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(sess).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *GormRepository) FindSession(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &sess, nil
}

func (r *GormRepository) RevokeSession(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
