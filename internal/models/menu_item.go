package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Category    string          `gorm:"size:50;index;not null" json:"category"`
	ImageURL    string          `gorm:"size:200" json:"image_url"`
	DietaryInfo pq.StringArray  `gorm:"type:text[]" json:"dietary_info"`
	Available   bool            `gorm:"not null" json:"available"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}
