package auth

import (
	"context"
	"testing"
	"time"

	"resto-backend/internal/apperr"

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

func TestGormRepositoryUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	_, err := NewGormRepository(db).FindUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepositoryRevokeSession(t *testing.T) {
	db, mock := newMockDB(t)
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE "sessions" SET "revoked_at"=\$1 WHERE id = \$2 AND revoked_at IS NULL`).
		WithArgs(at, "sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewGormRepository(db).RevokeSession(context.Background(), "sess-1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
