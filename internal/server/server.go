package server

import (
	"strings"
	"time"

	"resto-backend/internal/apperr"
	"resto-backend/internal/audit"
	"resto-backend/internal/auth"
	"resto-backend/internal/config"
	"resto-backend/internal/customer"
	"resto-backend/internal/logging"
	"resto-backend/internal/menu"
	"resto-backend/internal/metrics"
	"resto-backend/internal/ordering"
	"resto-backend/internal/reporting"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *logrus.Logger
	Auth   *auth.Service
}

// New builds the HTTP application with every route and its guard.
func New(d Deps) *fiber.App {
	cfg := d.Config

	menuSvc := menu.NewService(menu.NewGormRepository(d.DB), d.Log)
	orderSvc := ordering.NewService(ordering.NewGormRepository(d.DB), metrics.Orders{}, d.Log)
	customerSvc := customer.NewService(customer.NewGormRepository(d.DB), d.Log)
	reportSvc := reporting.NewService(d.DB, cfg.ReportTopItems, d.Log)
	auditRepo := audit.NewRepository(d.DB)

	app := fiber.New(fiber.Config{
		AppName:      "resto-backend",
		ErrorHandler: apperr.ErrorHandler(d.Log),
		BodyLimit:    8 * 1024 * 1024, // menu spreadsheets
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logging.RequestLogger(d.Log))
	app.Use(metrics.Middleware())
	origins := strings.Join(cfg.CORSOriginList(), ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
	}))
	app.Use(auth.LoadSession(d.Auth))

	app.Get("/healthz", healthHandler(d.DB))
	app.Get("/metrics", metrics.Handler())

	// Public
	app.Get("/api/menu", menu.PublicMenuHandler(menuSvc))
	app.Post("/api/place_order", ordering.PlaceOrderHandler(orderSvc))
	app.Get("/api/order_status/:id", ordering.OrderStatusHandler(orderSvc))
	app.Get("/api/reviews", customer.ListReviewsHandler(customerSvc))
	app.Post("/api/reviews", customer.PostReviewHandler(customerSvc))

	// Login
	app.Get("/login", auth.LoginPageHandler())
	app.Post("/login", loginLimiter(cfg.LoginRateLimit), auth.LoginHandler(d.Auth, auth.CookieOptions{Secure: cfg.CookieSecure}))
	app.Get("/logout", auth.RequireSession(auth.Page), auth.LogoutHandler(d.Auth))
	app.Get("/api/me", auth.RequireSession(auth.API), auth.MeHandler())

	// Admin API
	adminAPI := app.Group("/api/admin", auth.RequireAdmin(auth.API))
	adminAPI.Get("/menu", menu.ListAllHandler(menuSvc))
	adminAPI.Post("/menu", menu.CreateHandler(menuSvc))
	adminAPI.Post("/menu/import", menu.ImportHandler(menuSvc))
	adminAPI.Get("/menu/:id", menu.GetHandler(menuSvc))
	adminAPI.Put("/menu/:id", menu.UpdateHandler(menuSvc))
	adminAPI.Delete("/menu/:id", menu.DeleteHandler(menuSvc))

	reports := app.Group("/api/reports", auth.RequireAdmin(auth.API))
	reports.Get("/sales", reporting.SalesReportHandler(reportSvc))
	reports.Get("/sales.xlsx", reporting.SalesExportHandler(reportSvc))

	// Lives under /admin but answers as an API; it must be registered before
	// the page group so the page guard never sees it.
	app.Post("/admin/update_order_status/:id", auth.RequireAdmin(auth.API), ordering.UpdateStatusHandler(orderSvc))

	// Admin pages
	pages := app.Group("/admin", auth.RequireAdmin(auth.Page))
	pages.Get("/", reporting.DashboardHandler(reportSvc))
	pages.Get("/menu", menu.ListAllHandler(menuSvc))
	pages.Get("/orders", ordering.ListOrdersHandler(orderSvc))
	pages.Get("/orders/:id", ordering.OrderDetailHandler(orderSvc))
	pages.Get("/customers", customer.ListCustomersHandler(customerSvc))
	pages.Get("/reports", reporting.ReportsPageHandler(reportSvc))
	pages.Get("/audit-logs", audit.ListAuditLogsHandler(auditRepo))

	return app
}

func loginLimiter(max int) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts, try again later")
		},
	})
}

// GET /healthz
func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
