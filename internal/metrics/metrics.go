package metrics

import (
	"strconv"
	"time"

	"resto-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resto",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resto",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	ordersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resto",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders accepted, by order type and payment method.",
		},
		[]string{"order_type", "payment_method"},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resto",
			Subsystem: "orders",
			Name:      "status_changes_total",
			Help:      "Order status updates applied, by new status.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, ordersPlaced, statusChanges)
}

// Middleware records request counts and latency. The route label is the
// registered pattern, not the raw path, to keep cardinality bounded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _ = apperr.Status(err)
		}
		// Fiber reuses the request buffers; label values outlive the request.
		method := utils.CopyString(c.Method())
		route := utils.CopyString(c.Route().Path)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

func OrderPlaced(orderType, paymentMethod string) {
	ordersPlaced.WithLabelValues(orderType, paymentMethod).Inc()
}

func OrderStatusChanged(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

// Orders adapts the package-level order counters to the ordering service.
type Orders struct{}

func (Orders) OrderPlaced(orderType, paymentMethod string) { OrderPlaced(orderType, paymentMethod) }

func (Orders) OrderStatusChanged(status string) { OrderStatusChanged(status) }
