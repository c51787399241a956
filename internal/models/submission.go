package models

import "time"

const (
	// SubmissionStatusPending indicates the submission awaits grading.
	SubmissionStatusPending = "PENDING"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "GRADED"
)

// TaskSubmission is the single, mutable answer of a student to a task.
type TaskSubmission struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TaskID      uint       `gorm:"not null;uniqueIndex:idx_submission_task_student" json:"task_id"`
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_submission_task_student;index" json:"student_id"`
	Code        string     `gorm:"type:text;not null" json:"code"`
	Description string     `gorm:"type:text" json:"description"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Status      string     `gorm:"size:16;not null;default:PENDING;index" json:"status"`
	Score       *int       `json:"score"`
	Feedback    string     `gorm:"type:text" json:"feedback"`
	GradedAt    *time.Time `json:"graded_at"`
	GradedBy    *uint      `json:"graded_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Task        Task       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"task"`
	Student     Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsGraded reports whether the submission has a final score.
func (s TaskSubmission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded && s.Score != nil
}
