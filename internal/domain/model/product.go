package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `gorm:"type:varchar(32);primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	StockQuantity int64           `gorm:"not null" json:"stock_quantity"`
	CategoryID    string          `gorm:"type:varchar(32);not null;index" json:"category_id"`
	ImageURL      string          `gorm:"type:varchar(500)" json:"image_url"`
	Color         string          `gorm:"type:varchar(50)" json:"color"`
	Size          string          `gorm:"type:varchar(50)" json:"size"`
	Material      string          `gorm:"type:varchar(100)" json:"material"`
	IsActive      bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	// filled by joins, not a column
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (p Product) InStock() bool {
	return p.StockQuantity > 0
}
