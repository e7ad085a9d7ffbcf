package model

import "github.com/shopspring/decimal"

type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             string          `gorm:"type:varchar(32);not null;index" json:"order_id"`
	ProductID           string          `gorm:"type:varchar(32);not null;index" json:"product_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice           decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}
