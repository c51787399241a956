package dto

import (
	"time"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// SubmitRequest carries a student's answer to a task.
type SubmitRequest struct {
	Code        string `json:"code" validate:"required,max=100000"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// GradeRequest grades a submission. Score is bounded again by the task's max score.
type GradeRequest struct {
	Score    *int   `json:"score" validate:"required,gte=0,lte=100"`
	Feedback string `json:"feedback" validate:"omitempty,max=5000"`
}

// SubmissionListRequest filters the staff submission list.
type SubmissionListRequest struct {
	TaskID  *uint
	GroupID *uint
	Status  string
}

// SubmissionSummary is the compact submission view used in task lists.
type SubmissionSummary struct {
	ID          uint       `json:"id"`
	Status      string     `json:"status"`
	Score       *int       `json:"score"`
	SubmittedAt time.Time  `json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at"`
}

// SubmissionResponse is the full view of a submission.
type SubmissionResponse struct {
	ID          uint       `json:"id"`
	TaskID      uint       `json:"task_id"`
	TaskTitle   string     `json:"task_title,omitempty"`
	MaxScore    int        `json:"max_score,omitempty"`
	StudentID   uint       `json:"student_id"`
	StudentName string     `json:"student_name,omitempty"`
	GroupID     uint       `json:"group_id,omitempty"`
	GroupName   string     `json:"group_name,omitempty"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Status      string     `json:"status"`
	Score       *int       `json:"score"`
	Feedback    string     `json:"feedback"`
	GradedAt    *time.Time `json:"graded_at"`
	GradedBy    *uint      `json:"graded_by"`
}

// NewSubmissionSummary converts a submission model into its summary.
func NewSubmissionSummary(submission models.TaskSubmission) *SubmissionSummary {
	return &SubmissionSummary{
		ID:          submission.ID,
		Status:      submission.Status,
		Score:       submission.Score,
		SubmittedAt: submission.SubmittedAt,
		GradedAt:    submission.GradedAt,
	}
}

// NewSubmissionResponse converts a submission model.
func NewSubmissionResponse(submission models.TaskSubmission) SubmissionResponse {
	response := SubmissionResponse{
		ID:          submission.ID,
		TaskID:      submission.TaskID,
		StudentID:   submission.StudentID,
		Code:        submission.Code,
		Description: submission.Description,
		SubmittedAt: submission.SubmittedAt,
		Status:      submission.Status,
		Score:       submission.Score,
		Feedback:    submission.Feedback,
		GradedAt:    submission.GradedAt,
		GradedBy:    submission.GradedBy,
	}
	if submission.Task.ID != 0 {
		response.TaskTitle = submission.Task.Title
		response.MaxScore = submission.Task.ScoreCeiling()
		response.GroupID = submission.Task.GroupID
	}
	if submission.Student.ID != 0 {
		response.StudentName = submission.Student.FullName
		response.GroupName = submission.Student.Group.Name
	}
	return response
}

// NewSubmissionResponses converts a list of submissions.
func NewSubmissionResponses(submissions []models.TaskSubmission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
