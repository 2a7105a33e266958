package reporting

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type DailySalesResponse struct {
	Date   string      `json:"date"`
	Total  json.Number `json:"total"`
	Orders int64       `json:"orders"`
}

type CategorySalesResponse struct {
	Category string      `json:"category"`
	Total    json.Number `json:"total"`
}

type TopItemResponse struct {
	Name     string      `json:"name"`
	Quantity int64       `json:"quantity"`
	Revenue  json.Number `json:"revenue"`
}

type SalesReportResponse struct {
	Success       bool                    `json:"success"`
	TotalSales    json.Number             `json:"total_sales"`
	OrderCount    int64                   `json:"order_count"`
	DailySales    []DailySalesResponse    `json:"daily_sales"`
	CategorySales []CategorySalesResponse `json:"category_sales"`
	TopItems      []TopItemResponse       `json:"top_items"`
	StartDate     string                  `json:"start_date"`
	EndDate       string                  `json:"end_date"`
}

type RecentOrderResponse struct {
	ID           uint        `json:"id"`
	CustomerName string      `json:"customer_name"`
	OrderType    string      `json:"order_type"`
	Status       string      `json:"status"`
	OrderDate    string      `json:"order_date"`
	TotalAmount  json.Number `json:"total_amount"`
}

type DashboardResponse struct {
	TotalOrders    int64                 `json:"total_orders"`
	PendingOrders  int64                 `json:"pending_orders"`
	TotalRevenue   json.Number           `json:"total_revenue"`
	TotalMenuItems int64                 `json:"total_menu_items"`
	TotalCustomers int64                 `json:"total_customers"`
	RecentOrders   []RecentOrderResponse `json:"recent_orders"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toSalesResponse(rep *SalesReport) SalesReportResponse {
	res := SalesReportResponse{
		Success:       true,
		TotalSales:    money(rep.TotalSales),
		OrderCount:    rep.OrderCount,
		DailySales:    make([]DailySalesResponse, 0, len(rep.Daily)),
		CategorySales: make([]CategorySalesResponse, 0, len(rep.Categories)),
		TopItems:      make([]TopItemResponse, 0, len(rep.TopItems)),
		StartDate:     rep.Range.Start.Format(dateLayout),
		EndDate:       rep.Range.LastDay().Format(dateLayout),
	}
	for _, d := range rep.Daily {
		res.DailySales = append(res.DailySales, DailySalesResponse{Date: d.Date, Total: money(d.Total), Orders: d.Orders})
	}
	for _, c := range rep.Categories {
		res.CategorySales = append(res.CategorySales, CategorySalesResponse{Category: c.Category, Total: money(c.Total)})
	}
	for _, it := range rep.TopItems {
		res.TopItems = append(res.TopItems, TopItemResponse{Name: it.Name, Quantity: it.Quantity, Revenue: money(it.Revenue)})
	}
	return res
}

func rangeFromQuery(c *fiber.Ctx, svc *Service) (Range, error) {
	return ParseRange(c.Query("start_date"), c.Query("end_date"), svc.Now())
}

// GET /api/reports/sales?start_date=2026-03-01&end_date=2026-03-31&top=5
func SalesReportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := rangeFromQuery(c, svc)
		if err != nil {
			return err
		}
		rep, err := svc.SalesReport(c.UserContext(), r, c.QueryInt("top", svc.DefaultTopN()))
		if err != nil {
			return err
		}
		return c.JSON(toSalesResponse(rep))
	}
}

// GET /api/reports/sales.xlsx?start_date=...&end_date=...
func SalesExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := rangeFromQuery(c, svc)
		if err != nil {
			return err
		}
		buf, err := svc.ExportSalesXLSX(c.UserContext(), r, c.QueryInt("top", svc.DefaultTopN()))
		if err != nil {
			return err
		}

		name := fmt.Sprintf("sales_%s_%s.xlsx", r.Start.Format(dateLayout), r.LastDay().Format(dateLayout))
		c.Attachment(name)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	}
}

// GET /admin
func DashboardHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.DashboardSummary(c.UserContext())
		if err != nil {
			return err
		}

		res := DashboardResponse{
			TotalOrders:    sum.TotalOrders,
			PendingOrders:  sum.PendingOrders,
			TotalRevenue:   money(sum.TotalRevenue),
			TotalMenuItems: sum.TotalMenuItems,
			TotalCustomers: sum.TotalCustomers,
			RecentOrders:   make([]RecentOrderResponse, 0, len(sum.RecentOrders)),
		}
		for _, o := range sum.RecentOrders {
			res.RecentOrders = append(res.RecentOrders, RecentOrderResponse{
				ID:           o.ID,
				CustomerName: o.CustomerName,
				OrderType:    string(o.OrderType),
				Status:       string(o.Status),
				OrderDate:    o.OrderDate.UTC().Format(time.RFC3339),
				TotalAmount:  money(o.TotalAmount),
			})
		}
		return c.JSON(res)
	}
}

// GET /admin/reports
// Page model for the reports screen: the default window and the endpoints
// the page loads its data from.
func ReportsPageHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r := MonthToDate(svc.Now())
		return c.JSON(fiber.Map{
			"start_date": r.Start.Format(dateLayout),
			"end_date":   r.LastDay().Format(dateLayout),
			"top":        svc.DefaultTopN(),
			"sales_url":  "/api/reports/sales",
			"export_url": "/api/reports/sales.xlsx",
		})
	}
}
