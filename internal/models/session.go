package models

import "time"

// Session is a server-side login record. The signed cookie only carries its ID,
// so revoking the row logs the browser out immediately.
type Session struct {
	ID        string `gorm:"size:36;primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	User      User
	CreatedAt time.Time
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time
}

func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
