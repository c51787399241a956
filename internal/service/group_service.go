package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

var (
	// ErrGroupNotFound indicates the group was not located.
	ErrGroupNotFound = errors.New("group not found")
	// ErrGroupHasStudents blocks deleting a group that still has enrolled students.
	ErrGroupHasStudents = errors.New("group still has students")
	// ErrInvalidCourse indicates a payload referencing a course that does not exist.
	ErrInvalidCourse = errors.New("course does not exist")
)

// GroupService manages study groups.
type GroupService interface {
	List(ctx context.Context, req dto.GroupListRequest) ([]dto.GroupResponse, error)
	Get(ctx context.Context, id uint) (dto.GroupResponse, error)
	Create(ctx context.Context, payload dto.GroupCreateRequest) (dto.GroupResponse, error)
	Update(ctx context.Context, id uint, payload dto.GroupUpdateRequest) (dto.GroupResponse, error)
	Delete(ctx context.Context, id uint) error
}

type groupService struct {
	groups    repository.GroupRepository
	courses   repository.CourseRepository
	students  repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGroupService constructs the group service.
func NewGroupService(groups repository.GroupRepository, courses repository.CourseRepository, students repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) GroupService {
	return &groupService{
		groups:    groups,
		courses:   courses,
		students:  students,
		validator: validate,
		logger:    logger.With().Str("component", "group_service").Logger(),
	}
}

func (s *groupService) List(ctx context.Context, req dto.GroupListRequest) ([]dto.GroupResponse, error) {
	groups, err := s.groups.List(ctx, repository.GroupFilter{
		Status:   strings.ToUpper(strings.TrimSpace(req.Status)),
		CourseID: req.CourseID,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, dto.NewGroupResponse(group))
	}
	return responses, nil
}

func (s *groupService) Get(ctx context.Context, id uint) (dto.GroupResponse, error) {
	group, err := s.load(ctx, id)
	if err != nil {
		return dto.GroupResponse{}, err
	}
	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Create(ctx context.Context, payload dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}
	if err := s.ensureCourse(ctx, payload.CourseID); err != nil {
		return dto.GroupResponse{}, err
	}

	startDate, err := parseOptionalDate(payload.StartDate)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	group := models.Group{
		Name:        strings.TrimSpace(payload.Name),
		CourseID:    payload.CourseID,
		TeacherName: strings.TrimSpace(payload.TeacherName),
		DaysOfWeek:  models.EncodeDays(payload.DaysOfWeek),
		Time:        strings.TrimSpace(payload.Time),
		StartDate:   startDate,
		Status:      models.GroupStatusNabor,
	}
	if payload.Status != "" {
		group.Status = payload.Status
	}

	if err := s.groups.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().Uint("group_id", group.ID).Msg("group created")
	return s.Get(ctx, group.ID)
}

func (s *groupService) Update(ctx context.Context, id uint, payload dto.GroupUpdateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group, err := s.load(ctx, id)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if payload.Name != nil {
		group.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.CourseID != nil {
		if err := s.ensureCourse(ctx, payload.CourseID); err != nil {
			return dto.GroupResponse{}, err
		}
		group.CourseID = payload.CourseID
		group.Course = nil
	}
	if payload.TeacherName != nil {
		group.TeacherName = strings.TrimSpace(*payload.TeacherName)
	}
	if payload.DaysOfWeek != nil {
		group.DaysOfWeek = models.EncodeDays(payload.DaysOfWeek)
	}
	if payload.Time != nil {
		group.Time = strings.TrimSpace(*payload.Time)
	}
	if payload.StartDate != nil {
		startDate, err := parseOptionalDate(*payload.StartDate)
		if err != nil {
			return dto.GroupResponse{}, err
		}
		group.StartDate = startDate
	}
	if payload.Status != nil {
		group.Status = *payload.Status
	}

	if err := s.groups.Update(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}
	return s.Get(ctx, id)
}

func (s *groupService) Delete(ctx context.Context, id uint) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	students, err := s.students.List(ctx, repository.StudentFilter{GroupID: &id})
	if err != nil {
		return err
	}
	if len(students) > 0 {
		return ErrGroupHasStudents
	}

	if err := s.groups.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	return nil
}

func (s *groupService) load(ctx context.Context, id uint) (models.Group, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, err
	}
	return group, nil
}

func (s *groupService) ensureCourse(ctx context.Context, courseID *uint) error {
	if courseID == nil {
		return nil
	}
	if _, err := s.courses.GetByID(ctx, *courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCourse
		}
		return err
	}
	return nil
}
