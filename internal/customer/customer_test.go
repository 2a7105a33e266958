package customer

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"resto-backend/internal/apperr"
	"resto-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type memRepo struct {
	customers map[string]models.Customer
	reviews   []models.Review
}

func (r *memRepo) ListCustomers(context.Context) ([]models.Customer, error) {
	out := []models.Customer{}
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*models.Customer, error) {
	c, ok := r.customers[email]
	if !ok {
		return nil, apperr.NotFound("customer", email)
	}
	return &c, nil
}

func (r *memRepo) CreateReview(_ context.Context, review *models.Review) error {
	review.ID = uint(len(r.reviews) + 1)
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *memRepo) ListReviews(_ context.Context, limit int) ([]models.Review, error) {
	out := []models.Review{}
	for i := len(r.reviews) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.reviews[i])
	}
	return out, nil
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService() (*Service, *memRepo) {
	repo := &memRepo{customers: map[string]models.Customer{
		"asha@example.com": {ID: 1, Name: "Asha", Email: "asha@example.com", LoyaltyPoints: 160},
	}}
	svc := NewService(repo, quietLogger())
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC) }
	return svc, repo
}

func TestPostReview(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	review, err := svc.PostReview(ctx, " ASHA@example.com", 5, " Great chai ")
	require.NoError(t, err)
	assert.Equal(t, uint(1), review.CustomerID)
	assert.Equal(t, "Great chai", review.Comment)
	assert.Len(t, repo.reviews, 1)

	for _, rating := range []int{0, 6, -1} {
		_, err = svc.PostReview(ctx, "asha@example.com", rating, "")
		assert.True(t, apperr.IsValidation(err), "rating %d", rating)
	}

	_, err = svc.PostReview(ctx, "stranger@example.com", 4, "")
	assert.True(t, apperr.IsValidation(err))
	assert.Len(t, repo.reviews, 1)
}

func newApp(svc *Service) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(nil)})
	app.Get("/api/reviews", ListReviewsHandler(svc))
	app.Post("/api/reviews", PostReviewHandler(svc))
	app.Get("/admin/customers", ListCustomersHandler(svc))
	return app
}

func TestReviewHandlers(t *testing.T) {
	svc, _ := newTestService()
	app := newApp(svc)

	req := httptest.NewRequest("POST", "/api/reviews", strings.NewReader(`{"email":"asha@example.com","rating":4,"comment":"Tasty"}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/reviews", strings.NewReader(`{"email":"asha@example.com","rating":9}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/reviews", nil))
	require.NoError(t, err)
	var reviews []ReviewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "Asha", reviews[0].CustomerName)
	assert.Equal(t, "2026-03-14T18:30:00Z", reviews[0].DatePosted)
}

func TestListCustomersHandler(t *testing.T) {
	svc, _ := newTestService()
	resp, err := newApp(svc).Test(httptest.NewRequest("GET", "/admin/customers", nil))
	require.NoError(t, err)
	var body struct {
		Customers []CustomerResponse `json:"customers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Customers, 1)
	assert.Equal(t, int64(160), body.Customers[0].LoyaltyPoints)
}

func TestGormFindByEmailNotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "customers" WHERE email = $1 ORDER BY "customers"."id" LIMIT $2`)).
		WithArgs("nobody@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewGormRepository(db).FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
