package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDone      = "done"
	OrderStatusCancelled = "cancelled"
)

var OrderStatuses = []string{
	OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDone, OrderStatusCancelled,
}

const (
	DeliveryDineIn = "dine_in"
	DeliveryDoor   = "door_delivery"
	DeliveryPickUp = "pick_up"
)

type Order struct {
	ID             int             `json:"id"`
	OrderNumber    string          `json:"order_number"`
	UserID         int             `json:"user_id"`
	Status         string          `json:"status"`
	Email          string          `json:"email"`
	FullName       string          `json:"full_name"`
	Address        string          `json:"address"`
	DeliveryMethod string          `json:"delivery_method"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	Total          decimal.Decimal `json:"total"`
	Items          []OrderItem     `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
}
