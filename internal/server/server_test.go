package server

import (
	"context"
	"io"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"resto-backend/internal/apperr"
	"resto-backend/internal/auth"
	"resto-backend/internal/config"
	"resto-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type userStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	sessions map[string]models.Session
}

func (s *userStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, apperr.NotFound("user", username)
	}
	return &u, nil
}

func (s *userStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = uint(len(s.users) + 1)
	s.users[user.Username] = *user
	return nil
}

func (s *userStore) CreateSession(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *userStore) FindSession(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session", id)
	}
	for _, u := range s.users {
		if u.ID == sess.UserID {
			sess.User = u
		}
	}
	return &sess, nil
}

func (s *userStore) RevokeSession(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.RevokedAt = &at
		s.sessions[id] = sess
	}
	return nil
}

type fixture struct {
	app        *fiber.App
	mock       sqlmock.Sqlmock
	adminToken string
	staffToken string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := &userStore{users: map[string]models.User{}, sessions: map[string]models.Session{}}
	for _, u := range []struct {
		name  string
		admin bool
	}{{"admin", true}, {"staff", false}} {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, store.CreateUser(context.Background(), &models.User{
			Username: u.name, Email: u.name + "@resto.com", PasswordHash: string(hash), IsAdmin: u.admin,
		}))
	}
	authSvc := auth.NewService(store, "0123456789abcdef0123456789abcdef", time.Hour, log)

	cfg := &config.Config{
		CORSOrigins:    " http://localhost:5173 , https://resto.example.com,",
		ReportTopItems: 5,
		LoginRateLimit: 100,
	}
	app := New(Deps{Config: cfg, DB: db, Log: log, Auth: authSvc})

	f := &fixture{app: app, mock: mock}
	f.adminToken, _, err = authSvc.Authenticate(context.Background(), "admin", "secret-pass")
	require.NoError(t, err)
	f.staffToken, _, err = authSvc.Authenticate(context.Background(), "staff", "secret-pass")
	require.NoError(t, err)
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

var apiAdminRoutes = []struct{ method, path string }{
	{"POST", "/admin/update_order_status/1"},
	{"GET", "/api/reports/sales"},
	{"GET", "/api/reports/sales.xlsx"},
	{"GET", "/api/admin/menu"},
	{"POST", "/api/admin/menu"},
	{"GET", "/api/admin/menu/1"},
	{"PUT", "/api/admin/menu/1"},
	{"DELETE", "/api/admin/menu/1"},
	{"POST", "/api/admin/menu/import"},
}

var pageAdminRoutes = []string{
	"/admin",
	"/admin/menu",
	"/admin/orders",
	"/admin/orders/1",
	"/admin/customers",
	"/admin/reports",
	"/admin/audit-logs",
}

// The mock database has no expectations, so any query reaching it would
// fail the request with a 500 instead of the guard's answer.
func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", f.staffToken, "not-a-token"} {
		for _, r := range apiAdminRoutes {
			assert.Equal(t, fiber.StatusForbidden, f.do(t, r.method, r.path, token), "%s %s", r.method, r.path)
		}
		for _, p := range pageAdminRoutes {
			assert.Equal(t, fiber.StatusFound, f.do(t, "GET", p, token), p)
		}
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())

	// Labels recorded for the traffic above must still scrape cleanly.
	assert.Equal(t, fiber.StatusOK, f.do(t, "GET", "/metrics", ""))
}

func TestPageGuardRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest("GET", "/admin/orders", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+f.staffToken)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	var flash bool
	for _, c := range resp.Cookies() {
		if c.Name == auth.FlashCookie {
			flash = true
		}
	}
	assert.True(t, flash)
}

func TestAdminPassesGuard(t *testing.T) {
	f := newFixture(t)
	f.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "menu_items" ORDER BY category asc, id asc`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "category", "available"}).
			AddRow(1, "Masala Chai", "80.00", "drink", true))

	assert.Equal(t, fiber.StatusOK, f.do(t, "GET", "/api/admin/menu", f.adminToken))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPublicRoutes(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, fiber.StatusOK, f.do(t, "GET", "/healthz", ""))
	assert.Equal(t, fiber.StatusOK, f.do(t, "GET", "/metrics", ""))
	assert.Equal(t, fiber.StatusForbidden, f.do(t, "GET", "/api/me", ""))
	assert.Equal(t, fiber.StatusOK, f.do(t, "GET", "/api/me", f.staffToken))
}

func TestCORSAcceptsEveryConfiguredOrigin(t *testing.T) {
	f := newFixture(t)
	for _, origin := range []string{"http://localhost:5173", "https://resto.example.com"} {
		req := httptest.NewRequest("GET", "/healthz", nil)
		req.Header.Set(fiber.HeaderOrigin, origin)
		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, origin, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	}
}
