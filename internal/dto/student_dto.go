package dto

import (
	"time"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// StudentCreateRequest enrols a student into a group.
type StudentCreateRequest struct {
	FullName    string  `json:"full_name" validate:"required,min=2,max=255"`
	Phone       string  `json:"phone" validate:"required,max=32"`
	ParentPhone string  `json:"parent_phone" validate:"omitempty,max=32"`
	GroupID     uint    `json:"group_id" validate:"required"`
	Status      string  `json:"status" validate:"omitempty,oneof=LEAD ACTIVE DEBTOR STOPPED"`
	JoinedDate  string  `json:"joined_date" validate:"omitempty,datetime=2006-01-02"`
	Login       *string `json:"login" validate:"omitempty,min=3,max=64"`
	Password    *string `json:"password" validate:"omitempty,min=4,max=72"`
}

// StudentUpdateRequest updates a student. Nil fields are left untouched; an
// empty login clears the cabinet credentials.
type StudentUpdateRequest struct {
	FullName        *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	ParentPhone     *string `json:"parent_phone" validate:"omitempty,max=32"`
	GroupID         *uint   `json:"group_id" validate:"omitempty,gt=0"`
	Status          *string `json:"status" validate:"omitempty,oneof=LEAD ACTIVE DEBTOR STOPPED"`
	JoinedDate      *string `json:"joined_date" validate:"omitempty,datetime=2006-01-02"`
	NextPaymentDate *string `json:"next_payment_date" validate:"omitempty,datetime=2006-01-02"`
	Login           *string `json:"login" validate:"omitempty,max=64"`
	Password        *string `json:"password" validate:"omitempty,min=4,max=72"`
}

// StudentListRequest filters the student list.
type StudentListRequest struct {
	GroupID *uint
	Status  string
	Search  string
}

// GroupSummary is the compact group view embedded into other payloads.
type GroupSummary struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	CourseID    *uint    `json:"course_id"`
	CourseName  string   `json:"course_name,omitempty"`
	TeacherName string   `json:"teacher_name"`
	DaysOfWeek  []string `json:"days_of_week"`
	Time        string   `json:"time"`
	Status      string   `json:"status"`
}

// StudentResponse is the staff and cabinet view of a student.
type StudentResponse struct {
	ID              uint          `json:"id"`
	FullName        string        `json:"full_name"`
	Phone           string        `json:"phone"`
	ParentPhone     string        `json:"parent_phone"`
	Login           *string       `json:"login"`
	HasPassword     bool          `json:"has_password"`
	GroupID         uint          `json:"group_id"`
	Group           *GroupSummary `json:"group,omitempty"`
	Status          string        `json:"status"`
	JoinedDate      time.Time     `json:"joined_date"`
	LastPaymentDate *time.Time    `json:"last_payment_date"`
	NextPaymentDate *time.Time    `json:"next_payment_date"`
	CreatedAt       time.Time     `json:"created_at"`
}

// LoginCheckResponse reports whether a cabinet login is in use.
type LoginCheckResponse struct {
	Login  string `json:"login"`
	Exists bool   `json:"exists"`
}

// NewGroupSummary converts a group model. A zero group yields nil.
func NewGroupSummary(group models.Group) *GroupSummary {
	if group.ID == 0 {
		return nil
	}

	summary := &GroupSummary{
		ID:          group.ID,
		Name:        group.Name,
		CourseID:    group.CourseID,
		TeacherName: group.TeacherName,
		DaysOfWeek:  group.Days(),
		Time:        group.Time,
		Status:      group.Status,
	}
	if group.Course != nil {
		summary.CourseName = group.Course.Name
	}
	return summary
}

// NewStudentResponse converts a student model.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:              student.ID,
		FullName:        student.FullName,
		Phone:           student.Phone,
		ParentPhone:     student.ParentPhone,
		Login:           student.Login,
		HasPassword:     student.HasPassword(),
		GroupID:         student.GroupID,
		Group:           NewGroupSummary(student.Group),
		Status:          student.Status,
		JoinedDate:      student.JoinedDate,
		LastPaymentDate: student.LastPaymentDate,
		NextPaymentDate: student.NextPaymentDate,
		CreatedAt:       student.CreatedAt,
	}
}

// NewStudentResponses converts a list of students.
func NewStudentResponses(students []models.Student) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, NewStudentResponse(student))
	}
	return responses
}
