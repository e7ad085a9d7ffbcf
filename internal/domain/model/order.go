package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

type Order struct {
	ID              string          `gorm:"type:varchar(32);primaryKey" json:"id"`
	UserID          string          `gorm:"type:varchar(32);not null;index" json:"user_id"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	FullName        string          `gorm:"type:varchar(255);not null" json:"full_name"`
	Email           string          `gorm:"type:varchar(255);not null" json:"email"`
	Phone           string          `gorm:"type:varchar(30);not null" json:"phone"`
	ShippingAddress string          `gorm:"type:varchar(500);not null" json:"shipping_address"`
	Notes           string          `gorm:"type:varchar(1000)" json:"notes"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"subtotal"`
	ShippingFee     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"shipping_fee"`
	Tax             decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"tax"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	// empty key means the client did not ask for dedup
	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
