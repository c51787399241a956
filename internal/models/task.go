package models

import "time"

// Task lifecycle states.
const (
	TaskStatusActive = "ACTIVE"
	TaskStatusClosed = "CLOSED"
)

// DefaultTaskMaxScore is applied when a task is created without a max score.
const DefaultTaskMaxScore = 100

// Task is a coding assignment published to one group.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	ImageURL    string     `gorm:"size:512" json:"image_url"`
	GroupID     uint       `gorm:"not null;index" json:"group_id"`
	Deadline    *time.Time `json:"deadline"`
	MaxScore    int        `gorm:"not null" json:"max_score"`
	Status      string     `gorm:"size:16;not null;default:ACTIVE;index" json:"status"`
	CreatedBy   *uint      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Group       Group      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"group"`
}

// IsOpen reports whether students may still submit.
func (t Task) IsOpen() bool {
	return t.Status != TaskStatusClosed
}

// ScoreCeiling returns the highest score a submission can receive.
func (t Task) ScoreCeiling() int {
	switch {
	case t.MaxScore < 0:
		return 0
	case t.MaxScore > DefaultTaskMaxScore:
		return DefaultTaskMaxScore
	}
	return t.MaxScore
}
