package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/auth"
	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

const (
	cabinetPaymentLimit    = 10
	cabinetAttendanceLimit = 30
)

// CabinetService serves the student-facing cabinet.
type CabinetService interface {
	Login(ctx context.Context, payload dto.StudentLoginRequest) (dto.StudentAuthResponse, error)
	Dashboard(ctx context.Context, student models.Student) (dto.CabinetDashboardResponse, error)
	Payments(ctx context.Context, student models.Student) ([]dto.PaymentResponse, error)
	Attendance(ctx context.Context, student models.Student) ([]dto.AttendanceResponse, error)
	Tasks(ctx context.Context, student models.Student) ([]dto.StudentTaskResponse, error)
	Task(ctx context.Context, student models.Student, taskID uint) (dto.StudentTaskDetailResponse, error)
}

type cabinetService struct {
	students    repository.StudentRepository
	payments    repository.PaymentRepository
	attendance  repository.AttendanceRepository
	tasks       repository.TaskRepository
	submissions repository.SubmissionRepository
	tokens      *auth.TokenManager
	validator   *validator.Validate
	logger      zerolog.Logger
}

// CabinetRepositories groups the stores read by the cabinet.
type CabinetRepositories struct {
	Students    repository.StudentRepository
	Payments    repository.PaymentRepository
	Attendance  repository.AttendanceRepository
	Tasks       repository.TaskRepository
	Submissions repository.SubmissionRepository
}

// NewCabinetService constructs the cabinet service.
func NewCabinetService(repos CabinetRepositories, tokens *auth.TokenManager, validate *validator.Validate, logger zerolog.Logger) CabinetService {
	return &cabinetService{
		students:    repos.Students,
		payments:    repos.Payments,
		attendance:  repos.Attendance,
		tasks:       repos.Tasks,
		submissions: repos.Submissions,
		tokens:      tokens,
		validator:   validate,
		logger:      logger.With().Str("component", "cabinet_service").Logger(),
	}
}

func (s *cabinetService) Login(ctx context.Context, payload dto.StudentLoginRequest) (dto.StudentAuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentAuthResponse{}, err
	}

	login := normalizeLogin(&payload.Login)
	if login == nil {
		return dto.StudentAuthResponse{}, ErrInvalidCredentials
	}

	student, err := s.students.GetByLogin(ctx, *login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentAuthResponse{}, ErrInvalidCredentials
		}
		return dto.StudentAuthResponse{}, err
	}
	if !student.HasPassword() {
		return dto.StudentAuthResponse{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(student.PasswordHash, payload.Password); err != nil {
		return dto.StudentAuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueStudent(student.ID, *login)
	if err != nil {
		return dto.StudentAuthResponse{}, err
	}

	return dto.StudentAuthResponse{Token: token, Student: dto.NewStudentResponse(student)}, nil
}

func (s *cabinetService) Dashboard(ctx context.Context, student models.Student) (dto.CabinetDashboardResponse, error) {
	payments, err := s.payments.List(ctx, repository.PaymentFilter{StudentID: &student.ID, Limit: cabinetPaymentLimit})
	if err != nil {
		return dto.CabinetDashboardResponse{}, err
	}
	totalPaid, err := s.payments.SumForStudent(ctx, student.ID)
	if err != nil {
		return dto.CabinetDashboardResponse{}, err
	}
	records, err := s.attendance.List(ctx, repository.AttendanceFilter{
		StudentID: &student.ID,
		GroupID:   &student.GroupID,
		Limit:     cabinetAttendanceLimit,
	})
	if err != nil {
		return dto.CabinetDashboardResponse{}, err
	}

	return dto.CabinetDashboardResponse{
		Student:         dto.NewStudentResponse(student),
		Group:           dto.NewGroupSummary(student.Group),
		Payments:        dto.NewPaymentResponses(payments),
		TotalPaid:       totalPaid,
		Attendance:      dto.NewAttendanceResponses(records),
		AttendanceStats: dto.NewAttendanceStats(records),
	}, nil
}

func (s *cabinetService) Payments(ctx context.Context, student models.Student) ([]dto.PaymentResponse, error) {
	payments, err := s.payments.List(ctx, repository.PaymentFilter{StudentID: &student.ID})
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponses(payments), nil
}

func (s *cabinetService) Attendance(ctx context.Context, student models.Student) ([]dto.AttendanceResponse, error) {
	records, err := s.attendance.List(ctx, repository.AttendanceFilter{StudentID: &student.ID})
	if err != nil {
		return nil, err
	}
	return dto.NewAttendanceResponses(records), nil
}

// Tasks lists the active tasks of the student's group with the student's submission, if any.
func (s *cabinetService) Tasks(ctx context.Context, student models.Student) ([]dto.StudentTaskResponse, error) {
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{GroupID: &student.GroupID, Status: models.TaskStatusActive})
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &student.ID})
	if err != nil {
		return nil, err
	}

	byTask := make(map[uint]models.TaskSubmission, len(submissions))
	for _, submission := range submissions {
		byTask[submission.TaskID] = submission
	}

	responses := make([]dto.StudentTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		item := dto.StudentTaskResponse{TaskResponse: dto.NewTaskResponse(task)}
		if submission, ok := byTask[task.ID]; ok {
			item.Submission = dto.NewSubmissionSummary(submission)
		}
		responses = append(responses, item)
	}
	return responses, nil
}

func (s *cabinetService) Task(ctx context.Context, student models.Student, taskID uint) (dto.StudentTaskDetailResponse, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentTaskDetailResponse{}, ErrTaskNotFound
		}
		return dto.StudentTaskDetailResponse{}, err
	}
	if task.GroupID != student.GroupID {
		return dto.StudentTaskDetailResponse{}, ErrTaskNotFound
	}

	response := dto.StudentTaskDetailResponse{TaskResponse: dto.NewTaskResponse(task)}
	submission, err := s.submissions.GetByTaskAndStudent(ctx, task.ID, student.ID)
	switch {
	case err == nil:
		full := dto.NewSubmissionResponse(submission)
		response.Submission = &full
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.StudentTaskDetailResponse{}, err
	}

	return response, nil
}
