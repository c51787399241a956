package models

import "time"

// Staff roles.
const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
)

// Staff account states.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

// User represents a staff member with access to the admin panel.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     string    `gorm:"size:255" json:"full_name"`
	Role         string    `gorm:"size:16;not null;default:MANAGER" json:"role"`
	Status       string    `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActive reports whether the account may authenticate.
func (u User) IsActive() bool {
	return u.Status != UserStatusInactive
}
