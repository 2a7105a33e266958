package models

import "time"

// Customer is the loyalty identity behind anonymous orders, keyed by email.
type Customer struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:100;not null"`
	Email         string `gorm:"size:120;uniqueIndex;not null"`
	Phone         string `gorm:"size:20"`
	LoyaltyPoints int64  `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Reviews []Review
}

type Review struct {
	ID         uint   `gorm:"primaryKey"`
	CustomerID uint   `gorm:"index;not null"`
	Customer   Customer
	Rating     int       `gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment    string    `gorm:"type:text"`
	DatePosted time.Time `gorm:"index;not null"`
}
