package models

import "time"

// Course is the curriculum a group studies.
type Course struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	MonthlyPrice   int64     `gorm:"not null;default:0" json:"monthly_price"`
	DurationMonths int       `gorm:"not null;default:0" json:"duration_months"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
