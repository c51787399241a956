package dto

import (
	"time"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// CourseCreateRequest creates a course.
type CourseCreateRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=255"`
	Description    string `json:"description" validate:"omitempty,max=5000"`
	MonthlyPrice   int64  `json:"monthly_price" validate:"gte=0"`
	DurationMonths int    `json:"duration_months" validate:"gte=0,lte=120"`
}

// CourseUpdateRequest updates a course. Nil fields are left untouched.
type CourseUpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=255"`
	Description    *string `json:"description" validate:"omitempty,max=5000"`
	MonthlyPrice   *int64  `json:"monthly_price" validate:"omitempty,gte=0"`
	DurationMonths *int    `json:"duration_months" validate:"omitempty,gte=0,lte=120"`
}

// CourseResponse is the public view of a course.
type CourseResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	MonthlyPrice   int64     `json:"monthly_price"`
	DurationMonths int       `json:"duration_months"`
	CreatedAt      time.Time `json:"created_at"`
}

// GroupCreateRequest creates a group.
type GroupCreateRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=255"`
	CourseID    *uint    `json:"course_id" validate:"omitempty,gt=0"`
	TeacherName string   `json:"teacher_name" validate:"omitempty,max=255"`
	DaysOfWeek  []string `json:"days_of_week" validate:"omitempty,max=7,dive,max=16"`
	Time        string   `json:"time" validate:"omitempty,datetime=15:04"`
	StartDate   string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string   `json:"status" validate:"omitempty,oneof=NABOR ACTIVE COMPLETED"`
}

// GroupUpdateRequest updates a group. Nil fields are left untouched.
type GroupUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	CourseID    *uint    `json:"course_id" validate:"omitempty,gt=0"`
	TeacherName *string  `json:"teacher_name" validate:"omitempty,max=255"`
	DaysOfWeek  []string `json:"days_of_week" validate:"omitempty,max=7,dive,max=16"`
	Time        *string  `json:"time" validate:"omitempty,datetime=15:04"`
	StartDate   *string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Status      *string  `json:"status" validate:"omitempty,oneof=NABOR ACTIVE COMPLETED"`
}

// GroupListRequest filters the group list.
type GroupListRequest struct {
	Status   string
	CourseID *uint
}

// GroupResponse is the public view of a group.
type GroupResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	CourseID    *uint           `json:"course_id"`
	Course      *CourseResponse `json:"course,omitempty"`
	TeacherName string          `json:"teacher_name"`
	DaysOfWeek  []string        `json:"days_of_week"`
	Time        string          `json:"time"`
	StartDate   *time.Time      `json:"start_date"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewCourseResponse converts a course model.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:             course.ID,
		Name:           course.Name,
		Description:    course.Description,
		MonthlyPrice:   course.MonthlyPrice,
		DurationMonths: course.DurationMonths,
		CreatedAt:      course.CreatedAt,
	}
}

// NewGroupResponse converts a group model.
func NewGroupResponse(group models.Group) GroupResponse {
	response := GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		CourseID:    group.CourseID,
		TeacherName: group.TeacherName,
		DaysOfWeek:  group.Days(),
		Time:        group.Time,
		StartDate:   group.StartDate,
		Status:      group.Status,
		CreatedAt:   group.CreatedAt,
	}
	if group.Course != nil && group.Course.ID != 0 {
		course := NewCourseResponse(*group.Course)
		response.Course = &course
	}
	return response
}
