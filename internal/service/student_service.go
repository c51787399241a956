package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/auth"
	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates the student was not located.
	ErrStudentNotFound = errors.New("student not found")
	// ErrLoginTaken indicates another student already uses the cabinet login.
	ErrLoginTaken = errors.New("login already taken")
	// ErrInvalidGroup indicates a payload referencing a group that does not exist.
	ErrInvalidGroup = errors.New("group does not exist")
)

// StudentService manages student records and cabinet credentials.
type StudentService interface {
	List(ctx context.Context, req dto.StudentListRequest) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	CheckLogin(ctx context.Context, login string) (dto.LoginCheckResponse, error)
	Create(ctx context.Context, payload dto.StudentCreateRequest, actor ActivityActor) (dto.StudentResponse, error)
	Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest, actor ActivityActor) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
}

type studentService struct {
	students  repository.StudentRepository
	groups    repository.GroupRepository
	validator *validator.Validate
	activity  ActivityRecorder
	bus       events.Bus
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(students repository.StudentRepository, groups repository.GroupRepository, validate *validator.Validate, activity ActivityRecorder, bus events.Bus, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		groups:    groups,
		validator: validate,
		activity:  activity,
		bus:       bus,
		logger:    logger.With().Str("component", "student_service").Logger(),
		now:       time.Now,
	}
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest) ([]dto.StudentResponse, error) {
	students, err := s.students.List(ctx, repository.StudentFilter{
		GroupID: req.GroupID,
		Status:  strings.ToUpper(strings.TrimSpace(req.Status)),
		Search:  req.Search,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewStudentResponses(students), nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) CheckLogin(ctx context.Context, login string) (dto.LoginCheckResponse, error) {
	normalized := normalizeLogin(&login)
	if normalized == nil {
		return dto.LoginCheckResponse{Login: login, Exists: false}, nil
	}
	taken, err := s.students.LoginTaken(ctx, *normalized, 0)
	if err != nil {
		return dto.LoginCheckResponse{}, err
	}
	return dto.LoginCheckResponse{Login: *normalized, Exists: taken}, nil
}

func (s *studentService) Create(ctx context.Context, payload dto.StudentCreateRequest, actor ActivityActor) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	if err := s.ensureGroup(ctx, payload.GroupID); err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		FullName:    strings.TrimSpace(payload.FullName),
		Phone:       strings.TrimSpace(payload.Phone),
		ParentPhone: strings.TrimSpace(payload.ParentPhone),
		GroupID:     payload.GroupID,
		Status:      models.StudentStatusLead,
		JoinedDate:  s.now().UTC(),
	}
	if payload.Status != "" {
		student.Status = payload.Status
	}
	if payload.JoinedDate != "" {
		joined, err := parseDate(payload.JoinedDate)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.JoinedDate = joined
	}

	if login := normalizeLogin(payload.Login); login != nil {
		taken, err := s.students.LoginTaken(ctx, *login, 0)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		if taken {
			return dto.StudentResponse{}, ErrLoginTaken
		}
		student.Login = login
	}
	if payload.Password != nil && *payload.Password != "" {
		hash, err := auth.HashPassword(*payload.Password)
		if err != nil {
			return dto.StudentResponse{}, fmt.Errorf("hash password: %w", err)
		}
		student.PasswordHash = hash
	}

	if err := s.students.Create(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrLoginTaken
		}
		return dto.StudentResponse{}, err
	}

	created, err := s.load(ctx, student.ID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionStudentCreated,
		EntityType: "student",
		EntityID:   uintPtr(created.ID),
		Metadata: map[string]interface{}{
			"group_id": created.GroupID,
			"status":   created.Status,
		},
	})
	publishEvent(ctx, s.bus, s.logger, events.Event{
		Subject:   events.StudentChanged,
		EntityID:  created.ID,
		StudentID: created.ID,
		ActorID:   actorPtr(actor),
	})

	return dto.NewStudentResponse(created), nil
}

func (s *studentService) Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest, actor ActivityActor) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	changes := map[string]interface{}{}

	if payload.FullName != nil {
		student.FullName = strings.TrimSpace(*payload.FullName)
		changes["full_name"] = student.FullName
	}
	if payload.Phone != nil {
		student.Phone = strings.TrimSpace(*payload.Phone)
	}
	if payload.ParentPhone != nil {
		student.ParentPhone = strings.TrimSpace(*payload.ParentPhone)
	}
	if payload.GroupID != nil && *payload.GroupID != student.GroupID {
		if err := s.ensureGroup(ctx, *payload.GroupID); err != nil {
			return dto.StudentResponse{}, err
		}
		changes["group_id"] = *payload.GroupID
		student.GroupID = *payload.GroupID
		student.Group = models.Group{}
	}
	if payload.Status != nil && *payload.Status != student.Status {
		changes["status"] = map[string]string{"from": student.Status, "to": *payload.Status}
		student.Status = *payload.Status
	}
	if payload.JoinedDate != nil {
		joined, err := parseDate(*payload.JoinedDate)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.JoinedDate = joined
	}
	if payload.NextPaymentDate != nil {
		next, err := parseDate(*payload.NextPaymentDate)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.NextPaymentDate = &next
	}

	if payload.Login != nil {
		login := normalizeLogin(payload.Login)
		if login == nil {
			student.Login = nil
			student.PasswordHash = ""
			changes["login"] = "cleared"
		} else if student.Login == nil || *student.Login != *login {
			taken, err := s.students.LoginTaken(ctx, *login, student.ID)
			if err != nil {
				return dto.StudentResponse{}, err
			}
			if taken {
				return dto.StudentResponse{}, ErrLoginTaken
			}
			student.Login = login
			changes["login"] = *login
		}
	}
	if payload.Password != nil && *payload.Password != "" {
		hash, err := auth.HashPassword(*payload.Password)
		if err != nil {
			return dto.StudentResponse{}, fmt.Errorf("hash password: %w", err)
		}
		student.PasswordHash = hash
		changes["password"] = "changed"
	}

	if err := s.students.Update(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrLoginTaken
		}
		return dto.StudentResponse{}, err
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionStudentUpdated,
		EntityType: "student",
		EntityID:   uintPtr(updated.ID),
		Metadata:   changes,
	})
	publishEvent(ctx, s.bus, s.logger, events.Event{
		Subject:   events.StudentChanged,
		EntityID:  updated.ID,
		StudentID: updated.ID,
		ActorID:   actorPtr(actor),
	})

	return dto.NewStudentResponse(updated), nil
}

func (s *studentService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	student, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionStudentDeleted,
		EntityType: "student",
		EntityID:   uintPtr(id),
		Metadata: map[string]interface{}{
			"full_name": student.FullName,
			"group_id":  student.GroupID,
		},
	})
	publishEvent(ctx, s.bus, s.logger, events.Event{
		Subject:   events.StudentChanged,
		EntityID:  id,
		StudentID: id,
		ActorID:   actorPtr(actor),
	})

	return nil
}

func (s *studentService) load(ctx context.Context, id uint) (models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func (s *studentService) ensureGroup(ctx context.Context, groupID uint) error {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidGroup
		}
		return err
	}
	return nil
}
