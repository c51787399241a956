package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audited actions.
const (
	ActionSubmissionGraded       = "submission.graded"
	ActionStudentCreated         = "student.created"
	ActionStudentUpdated         = "student.updated"
	ActionStudentDeleted         = "student.deleted"
	ActionPaymentLogged          = "payment.logged"
	ActionAttendanceScored       = "attendance.scored"
	ActionAttendanceScoreCleared = "attendance.score_cleared"
)

// ActivityLog captures auditable events triggered by staff members.
type ActivityLog struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ActorID       uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole     string            `gorm:"size:16;not null" json:"actor_role"`
	Action        string            `gorm:"size:64;not null;index" json:"action"`
	EntityType    string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID      *uint             `json:"entity_id"`
	CorrelationID string            `gorm:"size:64" json:"correlation_id,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
}

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Group{},
		&Student{},
		&Task{},
		&TaskSubmission{},
		&Attendance{},
		&Payment{},
		&ActivityLog{},
	}
}
