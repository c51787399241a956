package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

var (
	// ErrAttendanceNotFound indicates the attendance record was not located.
	ErrAttendanceNotFound = errors.New("attendance record not found")
	// ErrScoreForbidden indicates a non-administrator trying to set a lesson score.
	ErrScoreForbidden = errors.New("only administrators can set lesson scores")
	// ErrScoreConflict indicates a payload that both sets and clears the score.
	ErrScoreConflict = errors.New("score and clear_score cannot be combined")
)

// AttendanceService records lesson attendance and lesson scores.
type AttendanceService interface {
	List(ctx context.Context, req dto.AttendanceListRequest) ([]dto.AttendanceResponse, error)
	Mark(ctx context.Context, payload dto.AttendanceMarkRequest, actor ActivityActor) (dto.AttendanceResponse, error)
	Update(ctx context.Context, id uint, payload dto.AttendanceUpdateRequest, actor ActivityActor) (dto.AttendanceResponse, error)
}

type attendanceService struct {
	records   repository.AttendanceRepository
	students  repository.StudentRepository
	validator *validator.Validate
	activity  ActivityRecorder
	bus       events.Bus
	logger    zerolog.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(records repository.AttendanceRepository, students repository.StudentRepository, validate *validator.Validate, activity ActivityRecorder, bus events.Bus, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		records:   records,
		students:  students,
		validator: validate,
		activity:  activity,
		bus:       bus,
		logger:    logger.With().Str("component", "attendance_service").Logger(),
	}
}

func (s *attendanceService) List(ctx context.Context, req dto.AttendanceListRequest) ([]dto.AttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	filter := repository.AttendanceFilter{GroupID: req.GroupID, StudentID: req.StudentID}
	if req.Date != "" {
		date, err := dto.ParseLessonDate(req.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		filter.Date = &date
	}

	records, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewAttendanceResponses(records), nil
}

// Mark creates or overwrites the record for (student, group, date).
func (s *attendanceService) Mark(ctx context.Context, payload dto.AttendanceMarkRequest, actor ActivityActor) (dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceResponse{}, err
	}
	if payload.Score != nil && !isAdmin(actor) {
		return dto.AttendanceResponse{}, ErrScoreForbidden
	}

	student, err := s.students.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrStudentNotFound
		}
		return dto.AttendanceResponse{}, err
	}
	// Lessons are only marked in the group the student currently attends.
	if student.GroupID != payload.GroupID {
		return dto.AttendanceResponse{}, ErrInvalidGroup
	}

	date, err := dto.ParseLessonDate(payload.Date)
	if err != nil {
		return dto.AttendanceResponse{}, ErrInvalidDate
	}

	record := models.Attendance{
		StudentID: payload.StudentID,
		GroupID:   payload.GroupID,
		Date:      date,
		Status:    models.AttendanceStatus(payload.Status),
		Score:     payload.Score,
		MarkedBy:  actorPtr(actor),
	}

	stored, err := s.records.Upsert(ctx, &record)
	if err != nil {
		return dto.AttendanceResponse{}, err
	}

	s.afterWrite(ctx, stored, payload.Score, actor)
	return dto.NewAttendanceResponse(stored), nil
}

func (s *attendanceService) Update(ctx context.Context, id uint, payload dto.AttendanceUpdateRequest, actor ActivityActor) (dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceResponse{}, err
	}
	if (payload.Score != nil || payload.ClearScore) && !isAdmin(actor) {
		return dto.AttendanceResponse{}, ErrScoreForbidden
	}
	if payload.Score != nil && payload.ClearScore {
		return dto.AttendanceResponse{}, ErrScoreConflict
	}

	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceResponse{}, ErrAttendanceNotFound
		}
		return dto.AttendanceResponse{}, err
	}

	if payload.Status != nil {
		record.Status = models.AttendanceStatus(*payload.Status)
	}
	if payload.Score != nil {
		record.Score = payload.Score
	}
	previous := record.Score
	if payload.ClearScore {
		record.Score = nil
	}
	record.MarkedBy = actorPtr(actor)

	if err := s.records.Update(ctx, &record); err != nil {
		return dto.AttendanceResponse{}, err
	}

	if payload.ClearScore && previous != nil {
		recordActivity(ctx, s.activity, s.logger, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     models.ActionAttendanceScoreCleared,
			EntityType: "attendance",
			EntityID:   uintPtr(record.ID),
			Metadata: map[string]interface{}{
				"student_id":     record.StudentID,
				"group_id":       record.GroupID,
				"previous_score": *previous,
			},
		})
	}

	s.afterWrite(ctx, record, payload.Score, actor)
	return dto.NewAttendanceResponse(record), nil
}

func (s *attendanceService) afterWrite(ctx context.Context, record models.Attendance, score *int, actor ActivityActor) {
	if score != nil {
		recordActivity(ctx, s.activity, s.logger, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     models.ActionAttendanceScored,
			EntityType: "attendance",
			EntityID:   uintPtr(record.ID),
			Metadata: map[string]interface{}{
				"student_id": record.StudentID,
				"group_id":   record.GroupID,
				"date":       record.Date.Format(dto.AttendanceDateLayout),
				"score":      *score,
			},
		})
	}
	publishEvent(ctx, s.bus, s.logger, events.Event{
		Subject:   events.AttendanceMarked,
		EntityID:  record.ID,
		StudentID: record.StudentID,
		ActorID:   actorPtr(actor),
	})
}

func isAdmin(actor ActivityActor) bool {
	return strings.EqualFold(actor.Role, models.UserRoleAdmin)
}
