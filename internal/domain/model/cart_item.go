package model

import "time"

// Price is not stored on the line; it is read from the product at pricing time.
type CartItem struct {
	ID        string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	CartID    string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_cart_product;index" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	AddedAt   time.Time `gorm:"not null;autoCreateTime" json:"added_at"`
}
