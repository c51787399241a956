package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Attendance is the record of one student at one lesson of a group.
type Attendance struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	StudentID uint             `gorm:"not null;uniqueIndex:idx_attendance_student_group_date;index" json:"student_id"`
	GroupID   uint             `gorm:"not null;uniqueIndex:idx_attendance_student_group_date" json:"group_id"`
	Date      time.Time        `gorm:"not null;uniqueIndex:idx_attendance_student_group_date" json:"date"`
	Status    AttendanceStatus `gorm:"size:16;not null" json:"status"`
	Score     *int             `json:"score"`
	MarkedBy  *uint            `json:"marked_by"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Student   Student          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// LessonDate truncates a timestamp to the UTC calendar day used as attendance key.
func LessonDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
