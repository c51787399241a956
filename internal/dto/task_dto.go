package dto

import (
	"time"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// TaskCreateRequest publishes a task to a group. Deadline accepts RFC3339 or YYYY-MM-DD.
type TaskCreateRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"required,max=20000"`
	GroupID     uint   `json:"group_id" validate:"required"`
	Deadline    string `json:"deadline" validate:"omitempty,max=40"`
	MaxScore    *int   `json:"max_score" validate:"omitempty,gte=0,lte=100"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=512"`
	Status      string `json:"status" validate:"omitempty,oneof=ACTIVE CLOSED"`
}

// TaskUpdateRequest updates a task. Nil fields are left untouched; an empty deadline clears it.
type TaskUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description" validate:"omitempty,max=20000"`
	GroupID     *uint   `json:"group_id" validate:"omitempty,gt=0"`
	Deadline    *string `json:"deadline" validate:"omitempty,max=40"`
	MaxScore    *int    `json:"max_score" validate:"omitempty,gte=0,lte=100"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=512"`
	Status      *string `json:"status" validate:"omitempty,oneof=ACTIVE CLOSED"`
}

// TaskListRequest filters the task list.
type TaskListRequest struct {
	GroupID *uint
	Status  string
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	GroupID     uint       `json:"group_id"`
	GroupName   string     `json:"group_name,omitempty"`
	Deadline    *time.Time `json:"deadline"`
	MaxScore    int        `json:"max_score"`
	Status      string     `json:"status"`
	CreatedBy   *uint      `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StudentTaskResponse lists a task together with the student's submission summary.
type StudentTaskResponse struct {
	TaskResponse
	Submission *SubmissionSummary `json:"submission"`
}

// StudentTaskDetailResponse shows a task with the student's full submission.
type StudentTaskDetailResponse struct {
	TaskResponse
	Submission *SubmissionResponse `json:"submission"`
}

// TaskImageResponse is returned after an image upload.
type TaskImageResponse struct {
	TaskID   uint   `json:"task_id"`
	ImageURL string `json:"image_url"`
}

// NewTaskResponse converts a task model.
func NewTaskResponse(task models.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		ImageURL:    task.ImageURL,
		GroupID:     task.GroupID,
		GroupName:   task.Group.Name,
		Deadline:    task.Deadline,
		MaxScore:    task.ScoreCeiling(),
		Status:      task.Status,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
	}
}
