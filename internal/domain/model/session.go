package model

import "time"

// Session is the server side half of a signed session token.
// The token itself is never stored, only its sha256.
type Session struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string     `gorm:"type:varchar(32);not null;index" json:"user_id"`
	TokenHash  string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	RememberMe bool       `gorm:"not null" json:"remember_me"`
	UserAgent  string     `gorm:"type:varchar(500)" json:"user_agent"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	RevokedAt  *time.Time `gorm:"index" json:"revoked_at,omitempty"`
	LastSeenAt time.Time  `gorm:"not null" json:"last_seen_at"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (s Session) ActiveAt(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
