package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resto-backend/internal/apperr"
	"resto-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Repository interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	CreateReview(ctx context.Context, review *models.Review) error
	ListReviews(ctx context.Context, limit int) ([]models.Review, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
	log  *logrus.Entry
}

func NewService(repo Repository, log logrus.FieldLogger) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
		log:  log.WithField("component", "customer"),
	}
}

// ListCustomers returns customers with the most loyalty points first.
func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// PostReview attaches a review to the customer who ordered with email.
func (s *Service) PostReview(ctx context.Context, email string, rating int, comment string) (*models.Review, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.Validation("email", "is required")
	}
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating", "must be between 1 and 5")
	}

	cust, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Validation("email", "no order was placed with this email")
	}
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		CustomerID: cust.ID,
		Customer:   *cust,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		DatePosted: s.now(),
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"customer_id": cust.ID, "rating": rating}).Info("review posted")
	return review, nil
}

func (s *Service) ListReviews(ctx context.Context, limit int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListReviews(ctx, limit)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).Order("loyalty_points DESC, name ASC").Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (r *GormRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var cust models.Customer
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&cust).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("customer", email)
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return &cust, nil
}

func (r *GormRepository) CreateReview(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit("Customer").Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *GormRepository) ListReviews(ctx context.Context, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Order("date_posted DESC, id DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
