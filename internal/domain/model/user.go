package model

import "time"

// Role ids are kept as stored codes.
type Role string

const (
	RoleAdmin    Role = "ROLE001"
	RoleStaff    Role = "ROLE002"
	RoleCustomer Role = "ROLE003"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// Name is the display name of the role.
func (r Role) Name() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStaff:
		return "staff"
	case RoleCustomer:
		return "customer"
	}
	return ""
}

type User struct {
	ID           string     `gorm:"type:varchar(32);primaryKey" json:"id"`
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	FullName     string     `gorm:"type:varchar(255)" json:"full_name"`
	Phone        string     `gorm:"type:varchar(30)" json:"phone"`
	Address      string     `gorm:"type:varchar(500)" json:"address"`
	RoleID       Role       `gorm:"type:varchar(20);not null;index" json:"role_id"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	TokenVersion int        `gorm:"not null;default:0" json:"token_version"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
