package models

import "time"

// Student enrollment states.
const (
	StudentStatusLead    = "LEAD"
	StudentStatusActive  = "ACTIVE"
	StudentStatusDebtor  = "DEBTOR"
	StudentStatusStopped = "STOPPED"
)

// RatedStudentStatuses lists the statuses that take part in the ranking.
var RatedStudentStatuses = []string{StudentStatusActive, StudentStatusDebtor}

// Student represents a learner enrolled into exactly one group.
type Student struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	FullName        string     `gorm:"size:255;not null" json:"full_name"`
	Phone           string     `gorm:"size:32;not null" json:"phone"`
	ParentPhone     string     `gorm:"size:32" json:"parent_phone"`
	Login           *string    `gorm:"size:64;uniqueIndex" json:"login"`
	PasswordHash    string     `gorm:"size:255" json:"-"`
	GroupID         uint       `gorm:"not null;index" json:"group_id"`
	Status          string     `gorm:"size:16;not null;default:LEAD;index" json:"status"`
	JoinedDate      time.Time  `json:"joined_date"`
	LastPaymentDate *time.Time `json:"last_payment_date"`
	NextPaymentDate *time.Time `json:"next_payment_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Group           Group      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"group"`
}

// IsRated reports whether the student takes part in the ranking.
func (s Student) IsRated() bool {
	return s.Status == StudentStatusActive || s.Status == StudentStatusDebtor
}

// HasPassword reports whether cabinet credentials were configured.
func (s Student) HasPassword() bool {
	return s.PasswordHash != ""
}
