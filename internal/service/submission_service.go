package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates the submission was not located.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrTaskClosed indicates a submission to a task that no longer accepts answers.
	ErrTaskClosed = errors.New("task is closed")
	// ErrScoreExceedsMax indicates a grading score above the task's max score.
	ErrScoreExceedsMax = errors.New("score exceeds task max score")
)

// SubmissionService runs the submit and grade workflow.
type SubmissionService interface {
	Submit(ctx context.Context, student models.Student, taskID uint, payload dto.SubmitRequest) (dto.SubmissionResponse, bool, error)
	Grade(ctx context.Context, submissionID uint, payload dto.GradeRequest, actor ActivityActor) (dto.SubmissionResponse, error)
	List(ctx context.Context, req dto.SubmissionListRequest) ([]dto.SubmissionResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	bus         events.Bus
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, tasks repository.TaskRepository, validate *validator.Validate, activity ActivityRecorder, bus events.Bus, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		tasks:       tasks,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		activity:    activity,
		bus:         bus,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/learncenter-api/internal/service/submission"),
		now:         time.Now,
	}
}

// Submit stores the student's answer. A previous answer to the same task is
// overwritten and its grade discarded. The boolean reports whether a new
// submission was created.
func (s *submissionService) Submit(ctx context.Context, student models.Student, taskID uint, payload dto.SubmitRequest) (dto.SubmissionResponse, bool, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, false, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, false, ErrTaskNotFound
		}
		return dto.SubmissionResponse{}, false, err
	}
	if task.GroupID != student.GroupID {
		return dto.SubmissionResponse{}, false, ErrTaskNotFound
	}
	if !task.IsOpen() {
		return dto.SubmissionResponse{}, false, ErrTaskClosed
	}

	submission := models.TaskSubmission{
		TaskID:      task.ID,
		StudentID:   student.ID,
		Code:        payload.Code,
		Description: strings.TrimSpace(payload.Description),
		SubmittedAt: s.now().UTC(),
		Status:      models.SubmissionStatusPending,
	}

	created, err := s.submissions.Upsert(ctx, &submission)
	if err != nil {
		return dto.SubmissionResponse{}, false, err
	}

	stored, err := s.submissions.GetByTaskAndStudent(ctx, task.ID, student.ID)
	if err != nil {
		return dto.SubmissionResponse{}, false, err
	}

	s.logger.Info().
		Uint("task_id", task.ID).
		Uint("student_id", student.ID).
		Bool("created", created).
		Msg("submission stored")

	publishEvent(ctx, s.bus, s.logger, events.Event{
		Subject:   events.SubmissionSubmitted,
		EntityID:  stored.ID,
		StudentID: student.ID,
	})

	return dto.NewSubmissionResponse(stored), created, nil
}

func (s *submissionService) Grade(ctx context.Context, submissionID uint, payload dto.GradeRequest, actor ActivityActor) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.update")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	score := *payload.Score
	if score > submission.Task.ScoreCeiling() {
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.SubmissionResponse{}, ErrScoreExceedsMax
	}

	previous := submission.Score
	gradedAt := s.now().UTC()
	submission.Score = &score
	submission.Status = models.SubmissionStatusGraded
	submission.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	submission.GradedAt = &gradedAt
	submission.GradedBy = actorPtr(actor)

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_failed")
		return dto.SubmissionResponse{}, err
	}

	metadata := map[string]interface{}{
		"task_id":    submission.TaskID,
		"student_id": submission.StudentID,
		"score":      score,
	}
	if previous != nil {
		metadata["previous_score"] = *previous
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionSubmissionGraded,
		EntityType: "submission",
		EntityID:   uintPtr(submission.ID),
		Metadata:   metadata,
	})
	publishEvent(ctx, s.bus, s.logger, events.Event{
		Subject:   events.SubmissionGraded,
		EntityID:  submission.ID,
		StudentID: submission.StudentID,
		ActorID:   actorPtr(actor),
	})

	span.SetAttributes(attribute.Int("grading.score", score))
	span.SetStatus(codes.Ok, "graded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, req dto.SubmissionListRequest) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		TaskID:  req.TaskID,
		GroupID: req.GroupID,
		Status:  strings.ToUpper(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions), nil
}

func (s *submissionService) ListForStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions), nil
}
