package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCooking   OrderStatus = "cooking"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderStatuses lists every label an order can carry, in kitchen order.
var OrderStatuses = []OrderStatus{
	OrderStatusReceived,
	OrderStatusCooking,
	OrderStatusReady,
	OrderStatusServed,
	OrderStatusDelivered,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is exposed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusServed || s == OrderStatusDelivered
}

type Order struct {
	ID              uint            `gorm:"primaryKey"`
	CustomerName    string          `gorm:"size:100;not null"`
	CustomerEmail   string          `gorm:"size:120;index"`
	CustomerPhone   string          `gorm:"size:20"`
	OrderType       OrderType       `gorm:"size:20;not null"`
	TableNumber     string          `gorm:"size:10"`
	DeliveryAddress string          `gorm:"type:text"`
	Status          OrderStatus     `gorm:"column:order_status;size:20;index;not null"`
	OrderDate       time.Time       `gorm:"index;not null"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UpdatedAt       time.Time

	Items   []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
	Payment *Payment    `gorm:"constraint:OnDelete:CASCADE"`
}

// OrderItem keeps a snapshot of the menu entry it was sold from, so deleting
// or repricing the menu item never rewrites order history.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    uint            `gorm:"index;not null"`
	MenuItemID *uint           `gorm:"index"`
	MenuItem   *MenuItem       `gorm:"constraint:OnDelete:SET NULL"`
	Name       string          `gorm:"size:100;not null"`
	Category   string          `gorm:"size:50;index;not null"`
	Quantity   int             `gorm:"not null;check:quantity > 0"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
