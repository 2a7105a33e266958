package ordering

import (
	"encoding/json"
	"time"

	"resto-backend/internal/auth"
	"resto-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone"`
	OrderType       string             `json:"order_type"`
	TableNumber     string             `json:"table_number"`
	DeliveryAddress string             `json:"delivery_address"`
	PaymentMethod   string             `json:"payment_method"`
	TransactionID   string             `json:"transaction_id"`
	TotalAmount     *json.Number       `json:"total_amount"`
	Items           []OrderLineRequest `json:"items"`
}

type OrderLineRequest struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" form:"status"`
}

type OrderItemResponse struct {
	ID         uint        `json:"id"`
	MenuItemID *uint       `json:"menu_item_id"`
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Quantity   int         `json:"quantity"`
	Price      json.Number `json:"price"`
	LineTotal  json.Number `json:"line_total"`
}

type PaymentResponse struct {
	Method        string      `json:"payment_method"`
	Status        string      `json:"payment_status"`
	TransactionID string      `json:"transaction_id,omitempty"`
	PaymentDate   string      `json:"payment_date"`
	Amount        json.Number `json:"amount"`
}

type OrderResponse struct {
	ID              uint                `json:"id"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email,omitempty"`
	CustomerPhone   string              `json:"customer_phone,omitempty"`
	OrderType       string              `json:"order_type"`
	TableNumber     string              `json:"table_number,omitempty"`
	DeliveryAddress string              `json:"delivery_address,omitempty"`
	Status          string              `json:"status"`
	OrderDate       string              `json:"order_date"`
	TotalAmount     json.Number         `json:"total_amount"`
	Items           []OrderItemResponse `json:"items,omitempty"`
	Payment         *PaymentResponse    `json:"payment,omitempty"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func ToOrderResponse(o models.Order) OrderResponse {
	res := OrderResponse{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		OrderType:       string(o.OrderType),
		TableNumber:     o.TableNumber,
		DeliveryAddress: o.DeliveryAddress,
		Status:          string(o.Status),
		OrderDate:       o.OrderDate.UTC().Format(time.RFC3339),
		TotalAmount:     money(o.TotalAmount),
	}
	for _, it := range o.Items {
		res.Items = append(res.Items, OrderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Category:   it.Category,
			Quantity:   it.Quantity,
			Price:      money(it.Price),
			LineTotal:  money(it.LineTotal()),
		})
	}
	if o.Payment != nil {
		res.Payment = &PaymentResponse{
			Method:        string(o.Payment.Method),
			Status:        string(o.Payment.Status),
			TransactionID: o.Payment.TransactionID,
			PaymentDate:   o.Payment.PaymentDate.UTC().Format(time.RFC3339),
			Amount:        money(o.Payment.Amount),
		}
	}
	return res
}

func parseOrderID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}
	return uint(id), nil
}

// POST /api/place_order
func PlaceOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PlaceOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		in := PlaceOrderInput{
			CustomerName:    body.CustomerName,
			CustomerEmail:   body.CustomerEmail,
			CustomerPhone:   body.CustomerPhone,
			OrderType:       models.OrderType(body.OrderType),
			TableNumber:     body.TableNumber,
			DeliveryAddress: body.DeliveryAddress,
			PaymentMethod:   models.PaymentMethod(body.PaymentMethod),
			TransactionID:   body.TransactionID,
		}
		if body.TotalAmount != nil {
			if total, err := decimal.NewFromString(body.TotalAmount.String()); err == nil {
				in.ClientTotal = &total
			}
		}
		for _, it := range body.Items {
			in.Items = append(in.Items, LineRequest{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
		}

		order, err := svc.PlaceOrder(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success":      true,
			"order_id":     order.ID,
			"order_status": order.Status,
			"total_amount": money(order.TotalAmount),
		})
	}
}

// GET /api/order_status/:id
func OrderStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseOrderID(c)
		if err != nil {
			return err
		}
		order, err := svc.GetStatus(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"id":         order.ID,
			"status":     order.Status,
			"order_date": order.OrderDate.UTC().Format(time.RFC3339),
		})
	}
}

// POST /admin/update_order_status/:id
func UpdateStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseOrderID(c)
		if err != nil {
			return err
		}
		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if err := svc.UpdateStatus(c.UserContext(), auth.ActorFrom(c), id, models.OrderStatus(body.Status)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// GET /admin/orders?status=received&limit=50&offset=0
func ListOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orders, total, err := svc.List(c.UserContext(), ListFilter{
			Status: models.OrderStatus(c.Query("status")),
			Limit:  c.QueryInt("limit", 50),
			Offset: c.QueryInt("offset", 0),
		})
		if err != nil {
			return err
		}

		res := make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			res = append(res, ToOrderResponse(o))
		}
		return c.JSON(fiber.Map{
			"orders":   res,
			"total":    total,
			"statuses": models.OrderStatuses,
		})
	}
}

// GET /admin/orders/:id
func OrderDetailHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseOrderID(c)
		if err != nil {
			return err
		}
		order, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"order":    ToOrderResponse(*order),
			"statuses": models.OrderStatuses,
		})
	}
}
