package ordering

import (
	"context"
	"strings"

	"resto-backend/internal/apperr"
	"resto-backend/internal/audit"
	"resto-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type LineRequest struct {
	MenuItemID uint
	Quantity   int
}

type PlaceOrderInput struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	OrderType       models.OrderType
	TableNumber     string
	DeliveryAddress string
	PaymentMethod   models.PaymentMethod
	TransactionID   string
	// ClientTotal is what the browser thinks the order costs. It is only
	// compared against the server total for logging.
	ClientTotal *decimal.Decimal
	Items       []LineRequest
}

// Recorder receives order events; the metrics package satisfies it.
type Recorder interface {
	OrderPlaced(orderType, paymentMethod string)
	OrderStatusChanged(status string)
}

type nopRecorder struct{}

func (nopRecorder) OrderPlaced(string, string) {}
func (nopRecorder) OrderStatusChanged(string) {}

type Service struct {
	repo     Repository
	recorder Recorder
	log      *logrus.Entry
}

func NewService(repo Repository, recorder Recorder, log logrus.FieldLogger) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{repo: repo, recorder: recorder, log: log.WithField("component", "ordering")}
}

// PlaceOrder validates the request, prices it from the current menu and
// stores order, lines, payment and loyalty points in one transaction.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	lines, err := s.normalize(&in)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MenuItemID)
	}

	order, err := s.repo.Place(ctx, ids, func(menu map[uint]models.MenuItem) (*models.Order, error) {
		items, total, err := BuildLines(lines, menu)
		if err != nil {
			return nil, err
		}
		return newOrder(in, items, total), nil
	})
	if err != nil {
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"order_type": order.OrderType,
		"total":      order.TotalAmount.StringFixed(2),
	})
	if in.ClientTotal != nil && !in.ClientTotal.Equal(order.TotalAmount) {
		entry.WithField("client_total", in.ClientTotal.String()).Warn("client total differs from menu prices, using server total")
	}
	entry.Info("order placed")
	s.recorder.OrderPlaced(string(order.OrderType), string(order.Payment.Method))
	return order, nil
}

func (s *Service) normalize(in *PlaceOrderInput) ([]LineRequest, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.TableNumber = strings.TrimSpace(in.TableNumber)
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	in.TransactionID = strings.TrimSpace(in.TransactionID)

	if in.CustomerName == "" {
		return nil, apperr.Validation("customer_name", "is required")
	}
	if !in.OrderType.Valid() {
		return nil, apperr.Validation("order_type", "must be one of dine-in, takeaway, delivery")
	}
	if in.OrderType == models.OrderTypeDineIn && in.TableNumber == "" {
		return nil, apperr.Validation("table_number", "is required for dine-in orders")
	}
	if in.OrderType == models.OrderTypeDelivery && in.DeliveryAddress == "" {
		return nil, apperr.Validation("delivery_address", "is required for delivery orders")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentMethodCash
	}
	if !in.PaymentMethod.Valid() {
		return nil, apperr.Validation("payment_method", "must be one of card, upi, paypal, cash")
	}
	return MergeLines(in.Items)
}

// MaxLineQuantity caps a single order line, before and after merging.
const MaxLineQuantity = 1000

// MergeLines rejects empty orders and out-of-range quantities and folds
// repeated menu items into one line, keeping first-seen order.
func MergeLines(reqs []LineRequest) ([]LineRequest, error) {
	if len(reqs) == 0 {
		return nil, apperr.Validation("items", "order must contain at least one item")
	}
	pos := make(map[uint]int, len(reqs))
	out := make([]LineRequest, 0, len(reqs))
	for _, r := range reqs {
		if r.MenuItemID == 0 {
			return nil, apperr.Validation("items", "menu_item_id is required")
		}
		if r.Quantity <= 0 {
			return nil, apperr.Validation("items", "quantity for menu item %d must be positive", r.MenuItemID)
		}
		if r.Quantity > MaxLineQuantity {
			return nil, apperr.Validation("items", "quantity for menu item %d must not exceed %d", r.MenuItemID, MaxLineQuantity)
		}
		if i, ok := pos[r.MenuItemID]; ok {
			// both sides are within the cap, so the sum cannot overflow
			if out[i].Quantity+r.Quantity > MaxLineQuantity {
				return nil, apperr.Validation("items", "quantity for menu item %d must not exceed %d", r.MenuItemID, MaxLineQuantity)
			}
			out[i].Quantity += r.Quantity
			continue
		}
		pos[r.MenuItemID] = len(out)
		out = append(out, r)
	}
	return out, nil
}

// BuildLines prices each line from the menu snapshot and returns the order
// total. Every referenced item must exist and be available.
func BuildLines(lines []LineRequest, menu map[uint]models.MenuItem) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		mi, ok := menu[l.MenuItemID]
		if !ok {
			return nil, decimal.Zero, apperr.Validation("items", "menu item %d does not exist", l.MenuItemID)
		}
		if !mi.Available {
			return nil, decimal.Zero, apperr.Validation("items", "%s is not available", mi.Name)
		}
		id := mi.ID
		item := models.OrderItem{
			MenuItemID: &id,
			Name:       mi.Name,
			Category:   mi.Category,
			Quantity:   l.Quantity,
			Price:      mi.Price,
		}
		total = total.Add(item.LineTotal())
		items = append(items, item)
	}
	return items, total, nil
}

func newOrder(in PlaceOrderInput, items []models.OrderItem, total decimal.Decimal) *models.Order {
	payStatus := models.PaymentStatusCompleted
	if in.PaymentMethod == models.PaymentMethodCash {
		payStatus = models.PaymentStatusPending
	}

	order := &models.Order{
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		OrderType:     in.OrderType,
		Status:        models.OrderStatusReceived,
		TotalAmount:   total,
		Items:         items,
		Payment: &models.Payment{
			Method:        in.PaymentMethod,
			Status:        payStatus,
			TransactionID: in.TransactionID,
			Amount:        total,
		},
	}
	switch in.OrderType {
	case models.OrderTypeDineIn:
		order.TableNumber = in.TableNumber
	case models.OrderTypeDelivery:
		order.DeliveryAddress = in.DeliveryAddress
	}
	return order
}

// LoyaltyPoints is one point per whole currency unit spent.
func LoyaltyPoints(total decimal.Decimal) int64 {
	if total.IsNegative() {
		return 0
	}
	return total.Floor().IntPart()
}

func (s *Service) GetStatus(ctx context.Context, id uint) (*models.Order, error) {
	return s.repo.GetStatus(ctx, id)
}

// CheckTransition allows any move between known labels except leaving a
// terminal one.
func CheckTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return apperr.Validation("status", "unknown order status %q", to)
	}
	if from.Terminal() && from != to {
		return apperr.ErrInvalidTransition
	}
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, actor audit.Actor, id uint, status models.OrderStatus) error {
	status = models.OrderStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return apperr.Validation("status", "unknown order status %q", status)
	}

	from, err := s.repo.UpdateStatus(ctx, actor, id, status, func(current models.OrderStatus) error {
		return CheckTransition(current, status)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": id,
		"from":     from,
		"to":       status,
		"user_id":  actor.UserID,
	}).Info("order status updated")
	s.recorder.OrderStatusChanged(string(status))
	return nil
}

type ListFilter struct {
	Status models.OrderStatus
	Limit  int
	Offset int
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Order, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.Validation("status", "unknown order status %q", f.Status)
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	return s.repo.Get(ctx, id)
}
