package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

var (
	// ErrTaskNotFound indicates the task was not located.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskDescriptionEmpty indicates a description that became empty after sanitising.
	ErrTaskDescriptionEmpty = errors.New("task description empty after sanitization")
	// ErrImageRequired indicates an upload request without a file.
	ErrImageRequired = errors.New("image file is required")
	// ErrImageTooLarge indicates an upload over the size limit.
	ErrImageTooLarge = errors.New("image exceeds size limit")
	// ErrImageTypeNotAllowed indicates an upload that is not a supported image.
	ErrImageTypeNotAllowed = errors.New("image type not allowed")
	// ErrUploadUnavailable indicates that no file storage is configured.
	ErrUploadUnavailable = errors.New("image storage not configured")
)

const maxTaskImageBytes = 5 * 1024 * 1024

var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// FileStorage persists uploaded files and returns their public URL.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// TaskService manages tasks published to groups.
type TaskService interface {
	List(ctx context.Context, req dto.TaskListRequest) ([]dto.TaskResponse, error)
	Get(ctx context.Context, id uint) (dto.TaskResponse, error)
	Create(ctx context.Context, payload dto.TaskCreateRequest, actor ActivityActor) (dto.TaskResponse, error)
	Update(ctx context.Context, id uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	UploadImage(ctx context.Context, id uint, file *multipart.FileHeader) (dto.TaskImageResponse, error)
}

type taskService struct {
	tasks     repository.TaskRepository
	groups    repository.GroupRepository
	storage   FileStorage
	bus       events.Bus
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTaskService constructs the task service. A nil storage disables image uploads.
func NewTaskService(tasks repository.TaskRepository, groups repository.GroupRepository, storage FileStorage, bus events.Bus, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:     tasks,
		groups:    groups,
		storage:   storage,
		bus:       bus,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) List(ctx context.Context, req dto.TaskListRequest) ([]dto.TaskResponse, error) {
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{
		GroupID: req.GroupID,
		Status:  strings.ToUpper(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, dto.NewTaskResponse(task))
	}
	return responses, nil
}

func (s *taskService) Get(ctx context.Context, id uint) (dto.TaskResponse, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return dto.TaskResponse{}, err
	}
	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Create(ctx context.Context, payload dto.TaskCreateRequest, actor ActivityActor) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}
	if err := s.ensureGroup(ctx, payload.GroupID); err != nil {
		return dto.TaskResponse{}, err
	}

	description := strings.TrimSpace(s.sanitizer.Sanitize(payload.Description))
	if description == "" {
		return dto.TaskResponse{}, ErrTaskDescriptionEmpty
	}

	deadline, err := parseOptionalDate(payload.Deadline)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	task := models.Task{
		Title:       strings.TrimSpace(payload.Title),
		Description: description,
		ImageURL:    strings.TrimSpace(payload.ImageURL),
		GroupID:     payload.GroupID,
		Deadline:    deadline,
		MaxScore:    models.DefaultTaskMaxScore,
		Status:      models.TaskStatusActive,
		CreatedBy:   actorPtr(actor),
	}
	if payload.MaxScore != nil {
		task.MaxScore = *payload.MaxScore
	}
	if payload.Status != "" {
		task.Status = payload.Status
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Uint("task_id", task.ID).Uint("group_id", task.GroupID).Msg("task created")
	return s.Get(ctx, task.ID)
}

func (s *taskService) Update(ctx context.Context, id uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	task, err := s.load(ctx, id)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	if payload.Title != nil {
		task.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		description := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
		if description == "" {
			return dto.TaskResponse{}, ErrTaskDescriptionEmpty
		}
		task.Description = description
	}
	if payload.GroupID != nil && *payload.GroupID != task.GroupID {
		if err := s.ensureGroup(ctx, *payload.GroupID); err != nil {
			return dto.TaskResponse{}, err
		}
		task.GroupID = *payload.GroupID
		task.Group = models.Group{}
	}
	if payload.Deadline != nil {
		deadline, err := parseOptionalDate(*payload.Deadline)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		task.Deadline = deadline
	}
	if payload.MaxScore != nil {
		task.MaxScore = *payload.MaxScore
	}
	if payload.ImageURL != nil {
		task.ImageURL = strings.TrimSpace(*payload.ImageURL)
	}
	if payload.Status != nil {
		task.Status = *payload.Status
	}

	if err := s.tasks.Update(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the task together with its submissions.
func (s *taskService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	publishEvent(ctx, s.bus, s.logger, events.Event{
		Subject:  events.TaskDeleted,
		EntityID: id,
		ActorID:  actorPtr(actor),
	})
	return nil
}

func (s *taskService) UploadImage(ctx context.Context, id uint, file *multipart.FileHeader) (dto.TaskImageResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/learncenter-api/internal/service/task")
	ctx, span := tracer.Start(ctx, "task.upload_image")
	span.SetAttributes(attribute.Int64("task.id", int64(id)))
	defer span.End()

	if s.storage == nil {
		span.SetStatus(codes.Error, "storage unavailable")
		return dto.TaskImageResponse{}, ErrUploadUnavailable
	}
	if file == nil {
		span.SetStatus(codes.Error, "file missing")
		return dto.TaskImageResponse{}, ErrImageRequired
	}
	if file.Size > maxTaskImageBytes {
		span.SetStatus(codes.Error, "payload too large")
		return dto.TaskImageResponse{}, ErrImageTooLarge
	}

	task, err := s.load(ctx, id)
	if err != nil {
		return dto.TaskImageResponse{}, err
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.TaskImageResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxTaskImageBytes+1)); err != nil {
		span.RecordError(err)
		return dto.TaskImageResponse{}, err
	}
	if buf.Len() > maxTaskImageBytes {
		span.SetStatus(codes.Error, "payload too large")
		return dto.TaskImageResponse{}, ErrImageTooLarge
	}

	detected := mimetype.Detect(buf.Bytes()).String()
	if idx := strings.Index(detected, ";"); idx >= 0 {
		detected = detected[:idx]
	}
	span.SetAttributes(attribute.String("upload.detected_mime", detected))
	if _, ok := allowedImageTypes[detected]; !ok {
		span.SetStatus(codes.Error, "type not allowed")
		return dto.TaskImageResponse{}, ErrImageTypeNotAllowed
	}

	name := filepath.Base(strings.TrimSpace(file.Filename))
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.TaskImageResponse{}, err
	}

	task.ImageURL = url
	if err := s.tasks.Update(ctx, &task); err != nil {
		return dto.TaskImageResponse{}, err
	}

	span.SetStatus(codes.Ok, "stored")
	return dto.TaskImageResponse{TaskID: task.ID, ImageURL: url}, nil
}

func (s *taskService) load(ctx context.Context, id uint) (models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

func (s *taskService) ensureGroup(ctx context.Context, groupID uint) error {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidGroup
		}
		return err
	}
	return nil
}
