package dto

import (
	"time"

	"github.com/noah-isme/learncenter-api/internal/rating"
)

// StudentRatingResponse is the rating of one student.
type StudentRatingResponse struct {
	StudentID        uint   `json:"student_id"`
	FullName         string `json:"full_name"`
	AverageScore     int    `json:"average_score"`
	TaskCount        int    `json:"task_count"`
	AttendanceCount  int    `json:"attendance_count"`
	TotalAssessments int    `json:"total_assessments"`
	Rank             int    `json:"rank"`
	TotalStudents    int    `json:"total_students"`
}

// LeaderboardRequest filters the leaderboard.
type LeaderboardRequest struct {
	GroupID *uint
}

// LeaderboardResponse lists ranked students. Ranks are global even when filtered.
type LeaderboardResponse struct {
	GeneratedAt   time.Time      `json:"generated_at"`
	TotalStudents int            `json:"total_students"`
	Entries       []rating.Entry `json:"entries"`
}
