package dto

import (
	"time"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// AttendanceDateLayout is the wire format of lesson dates.
const AttendanceDateLayout = "2006-01-02"

// AttendanceMarkRequest creates or updates the record of one student at one lesson.
type AttendanceMarkRequest struct {
	StudentID uint   `json:"student_id" validate:"required"`
	GroupID   uint   `json:"group_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=PRESENT LATE ABSENT"`
	Score     *int   `json:"score" validate:"omitempty,gte=0,lte=100"`
}

// AttendanceUpdateRequest changes the status or score of an existing record.
// ClearScore removes a previously set score.
type AttendanceUpdateRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=PRESENT LATE ABSENT"`
	Score      *int    `json:"score" validate:"omitempty,gte=0,lte=100"`
	ClearScore bool    `json:"clear_score"`
}

// AttendanceListRequest filters attendance records.
type AttendanceListRequest struct {
	GroupID   *uint
	StudentID *uint
	Date      string `validate:"omitempty,datetime=2006-01-02"`
}

// AttendanceResponse is the public view of an attendance record.
type AttendanceResponse struct {
	ID          uint   `json:"id"`
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	GroupID     uint   `json:"group_id"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Score       *int   `json:"score"`
	MarkedBy    *uint  `json:"marked_by"`
}

// AttendanceStats summarises a list of attendance records.
type AttendanceStats struct {
	Total      int `json:"total"`
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	Late       int `json:"late"`
	Percentage int `json:"percentage"`
}

// NewAttendanceResponse converts an attendance model.
func NewAttendanceResponse(record models.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:          record.ID,
		StudentID:   record.StudentID,
		StudentName: record.Student.FullName,
		GroupID:     record.GroupID,
		Date:        record.Date.UTC().Format(AttendanceDateLayout),
		Status:      string(record.Status),
		Score:       record.Score,
		MarkedBy:    record.MarkedBy,
	}
}

// NewAttendanceResponses converts a list of attendance records.
func NewAttendanceResponses(records []models.Attendance) []AttendanceResponse {
	responses := make([]AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewAttendanceResponse(record))
	}
	return responses
}

// NewAttendanceStats counts statuses. Percentage is present/total rounded to the nearest integer.
func NewAttendanceStats(records []models.Attendance) AttendanceStats {
	stats := AttendanceStats{Total: len(records)}
	for _, record := range records {
		switch record.Status {
		case models.AttendanceStatusPresent:
			stats.Present++
		case models.AttendanceStatusAbsent:
			stats.Absent++
		case models.AttendanceStatusLate:
			stats.Late++
		}
	}
	if stats.Total > 0 {
		stats.Percentage = (200*stats.Present + stats.Total) / (2 * stats.Total)
	}
	return stats
}

// ParseLessonDate parses a YYYY-MM-DD lesson date in UTC.
func ParseLessonDate(value string) (time.Time, error) {
	return time.ParseInLocation(AttendanceDateLayout, value, time.UTC)
}
