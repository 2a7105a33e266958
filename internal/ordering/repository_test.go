package ordering

import (
	"context"
	"regexp"
	"testing"
	"time"

	"resto-backend/internal/apperr"
	"resto-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func newTestRepo(db *gorm.DB) *GormRepository {
	r := NewGormRepository(db)
	r.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestPlaceWritesOrderAndUpsertsLoyalty(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(newTestRepo(db), nil, quietLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "menu_items" WHERE id IN ($1) FOR SHARE`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "category", "available"}).
			AddRow(1, "Masala Chai", "80.00", "drink", true))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "order_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1000))
	mock.ExpectQuery(`INSERT INTO "customers" .* ON CONFLICT \("email"\) DO UPDATE SET .*customers\.loyalty_points \+ excluded\.loyalty_points`).
		WithArgs("Asha", "asha@example.com", "", int64(160), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	order, err := svc.PlaceOrder(context.Background(), takeaway("asha@example.com", LineRequest{MenuItemID: 1, Quantity: 2}))
	require.NoError(t, err)
	assert.Equal(t, uint(10), order.ID)
	assert.Equal(t, uint(10), order.Items[0].OrderID)
	assert.Equal(t, uint(10), order.Payment.OrderID)
	assert.Equal(t, "160.00", order.TotalAmount.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceRollsBackOnUnavailableItem(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(newTestRepo(db), nil, quietLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "menu_items" WHERE id IN ($1) FOR SHARE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "category", "available"}).
			AddRow(3, "Gulab Jamun", "120.00", "dessert", false))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), takeaway("asha@example.com", LineRequest{MenuItemID: 3, Quantity: 1}))
	assert.True(t, apperr.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusLocksRowAndAudits(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","order_status" FROM "orders" WHERE id = $1 ORDER BY "orders"."id" LIMIT $2 FOR UPDATE`)).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_status"}).AddRow(7, "received"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET "order_status"=$1,"updated_at"=$2 WHERE id = $3`)).
		WithArgs("cooking", sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	from, err := newTestRepo(db).UpdateStatus(context.Background(), admin, 7, models.OrderStatusCooking, func(current models.OrderStatus) error {
		return CheckTransition(current, models.OrderStatusCooking)
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, from)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusFromTerminalRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "orders" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_status"}).AddRow(7, "delivered"))
	mock.ExpectRollback()

	_, err := newTestRepo(db).UpdateStatus(context.Background(), admin, 7, models.OrderStatusCooking, func(current models.OrderStatus) error {
		return CheckTransition(current, models.OrderStatusCooking)
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatusNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","order_status","order_date" FROM "orders" WHERE id = $1`)).
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_status", "order_date"}))

	_, err := newTestRepo(db).GetStatus(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
