package model

import "time"

// One cart per user, created on first use.
type Cart struct {
	ID        string    `gorm:"type:varchar(32);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
