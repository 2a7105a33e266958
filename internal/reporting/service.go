package reporting

import (
	"context"
	"fmt"
	"time"

	"resto-backend/internal/apperr"
	"resto-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Range is a half-open window [Start, End) over order_date, in UTC. Both
// bounds sit on midnight.
type Range struct {
	Start time.Time
	End   time.Time
}

// LastDay is the final calendar day the range covers.
func (r Range) LastDay() time.Time {
	return r.End.AddDate(0, 0, -1)
}

// MonthToDate runs from the first of the current month to the end of today.
func MonthToDate(now time.Time) Range {
	now = now.UTC()
	return Range{
		Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		End:   nextDay(now),
	}
}

func nextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
}

// ParseRange reads YYYY-MM-DD bounds. A missing bound falls back to the
// month-to-date default.
func ParseRange(start, end string, now time.Time) (Range, error) {
	r := MonthToDate(now)
	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return Range{}, apperr.Validation("start_date", "must be YYYY-MM-DD")
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return Range{}, apperr.Validation("end_date", "must be YYYY-MM-DD")
		}
		r.End = nextDay(t)
	}
	if !r.End.After(r.Start) {
		return Range{}, apperr.Validation("end_date", "must not be before start_date")
	}
	return r, nil
}

type DailySales struct {
	Date   string          `gorm:"column:day"`
	Total  decimal.Decimal `gorm:"column:total"`
	Orders int64           `gorm:"column:orders"`
}

type CategorySales struct {
	Category string          `gorm:"column:category"`
	Total    decimal.Decimal `gorm:"column:total"`
}

type TopItem struct {
	Name     string          `gorm:"column:name"`
	Quantity int64           `gorm:"column:quantity"`
	Revenue  decimal.Decimal `gorm:"column:revenue"`
}

type SalesReport struct {
	Range      Range
	TotalSales decimal.Decimal
	OrderCount int64
	Daily      []DailySales
	Categories []CategorySales
	TopItems   []TopItem
}

type DashboardSummary struct {
	TotalOrders    int64
	PendingOrders  int64
	TotalRevenue   decimal.Decimal
	TotalMenuItems int64
	TotalCustomers int64
	RecentOrders   []models.Order
}

type Service struct {
	db   *gorm.DB
	topN int
	now  func() time.Time
	log  *logrus.Entry
}

func NewService(db *gorm.DB, topN int, log logrus.FieldLogger) *Service {
	if topN <= 0 {
		topN = 5
	}
	return &Service{
		db:   db,
		topN: topN,
		now:  func() time.Time { return time.Now().UTC() },
		log:  log.WithField("component", "reporting"),
	}
}

func (s *Service) Now() time.Time { return s.now() }

func (s *Service) DefaultTopN() int { return s.topN }

func (s *Service) SalesReport(ctx context.Context, r Range, topN int) (*SalesReport, error) {
	if topN <= 0 {
		topN = s.topN
	}
	db := s.db.WithContext(ctx)
	rep := &SalesReport{Range: r, TotalSales: decimal.Zero}

	err := db.Raw(`
		SELECT TO_CHAR(DATE(order_date AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day,
		       SUM(total_amount) AS total,
		       COUNT(*) AS orders
		FROM orders
		WHERE order_date >= ? AND order_date < ?
		GROUP BY DATE(order_date AT TIME ZONE 'UTC')
		ORDER BY DATE(order_date AT TIME ZONE 'UTC') ASC
	`, r.Start, r.End).Scan(&rep.Daily).Error
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	for _, d := range rep.Daily {
		rep.TotalSales = rep.TotalSales.Add(d.Total)
		rep.OrderCount += d.Orders
	}

	// Lines carry a category snapshot, so deleted menu items still count.
	err = db.Raw(`
		SELECT oi.category AS category,
		       SUM(oi.price * oi.quantity) AS total
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.order_date >= ? AND o.order_date < ?
		GROUP BY oi.category
		ORDER BY total DESC, oi.category ASC
	`, r.Start, r.End).Scan(&rep.Categories).Error
	if err != nil {
		return nil, fmt.Errorf("category sales: %w", err)
	}

	err = db.Raw(`
		SELECT oi.name AS name,
		       SUM(oi.quantity) AS quantity,
		       SUM(oi.price * oi.quantity) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.order_date >= ? AND o.order_date < ?
		GROUP BY oi.name
		ORDER BY quantity DESC, oi.name ASC
		LIMIT ?
	`, r.Start, r.End, topN).Scan(&rep.TopItems).Error
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"start":  r.Start.Format(dateLayout),
		"end":    r.LastDay().Format(dateLayout),
		"orders": rep.OrderCount,
	}).Debug("sales report built")
	return rep, nil
}

func (s *Service) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	db := s.db.WithContext(ctx)
	sum := &DashboardSummary{}

	if err := db.Model(&models.Order{}).Count(&sum.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	err := db.Model(&models.Order{}).
		Where("order_status NOT IN ?", []models.OrderStatus{models.OrderStatusServed, models.OrderStatusDelivered}).
		Count(&sum.PendingOrders).Error
	if err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}
	var revenue struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := db.Raw(`SELECT COALESCE(SUM(total_amount), 0) AS total FROM orders`).Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}
	sum.TotalRevenue = revenue.Total
	if err := db.Model(&models.MenuItem{}).Count(&sum.TotalMenuItems).Error; err != nil {
		return nil, fmt.Errorf("count menu items: %w", err)
	}
	if err := db.Model(&models.Customer{}).Count(&sum.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if err := db.Order("order_date DESC, id DESC").Limit(5).Find(&sum.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	return sum, nil
}
