package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Group lifecycle states. NABOR marks a group that is still recruiting.
const (
	GroupStatusNabor     = "NABOR"
	GroupStatusActive    = "ACTIVE"
	GroupStatusCompleted = "COMPLETED"
)

// Group is a cohort of students following one course on a fixed schedule.
type Group struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	CourseID    *uint          `gorm:"index" json:"course_id"`
	TeacherName string         `gorm:"size:255" json:"teacher_name"`
	DaysOfWeek  datatypes.JSON `gorm:"type:json" json:"days_of_week"`
	Time        string         `gorm:"size:16" json:"time"`
	StartDate   *time.Time     `json:"start_date"`
	Status      string         `gorm:"size:16;not null;default:NABOR;index" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Course      *Course        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"course,omitempty"`
}

// Days decodes the stored schedule days. Invalid payloads yield an empty slice.
func (g Group) Days() []string {
	if len(g.DaysOfWeek) == 0 {
		return []string{}
	}
	var days []string
	if err := json.Unmarshal(g.DaysOfWeek, &days); err != nil {
		return []string{}
	}
	return days
}

// MeetsOn reports whether the group has a lesson on the given weekday.
func (g Group) MeetsOn(day time.Weekday) bool {
	for _, d := range g.Days() {
		if WeekdayMatches(d, day) {
			return true
		}
	}
	return false
}

// EncodeDays serialises schedule days for storage.
func EncodeDays(days []string) datatypes.JSON {
	cleaned := make([]string, 0, len(days))
	for _, d := range days {
		if trimmed := strings.TrimSpace(d); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	payload, err := json.Marshal(cleaned)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(payload)
}

// WeekdayMatches compares a stored day label ("Mon", "monday", "1") with a weekday.
func WeekdayMatches(label string, day time.Weekday) bool {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return false
	}
	full := strings.ToLower(day.String())
	if normalized == full || normalized == full[:3] {
		return true
	}
	return normalized == string(rune('0'+int(day)))
}
