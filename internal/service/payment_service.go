package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

// PaymentService logs tuition payments and keeps billing dates current.
type PaymentService interface {
	List(ctx context.Context, req dto.PaymentListRequest) ([]dto.PaymentResponse, error)
	Create(ctx context.Context, payload dto.PaymentCreateRequest, actor ActivityActor) (dto.PaymentResponse, error)
}

type paymentService struct {
	payments  repository.PaymentRepository
	students  repository.StudentRepository
	validator *validator.Validate
	activity  ActivityRecorder
	bus       events.Bus
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPaymentService constructs the payment service.
func NewPaymentService(payments repository.PaymentRepository, students repository.StudentRepository, validate *validator.Validate, activity ActivityRecorder, bus events.Bus, logger zerolog.Logger) PaymentService {
	return &paymentService{
		payments:  payments,
		students:  students,
		validator: validate,
		activity:  activity,
		bus:       bus,
		logger:    logger.With().Str("component", "payment_service").Logger(),
		now:       time.Now,
	}
}

func (s *paymentService) List(ctx context.Context, req dto.PaymentListRequest) ([]dto.PaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	payments, err := s.payments.List(ctx, repository.PaymentFilter{
		StudentID: req.StudentID,
		Month:     strings.TrimSpace(req.Month),
	})
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponses(payments), nil
}

// Create stores the payment, moves the next payment date one month past the
// payment date and brings a debtor back to active.
func (s *paymentService) Create(ctx context.Context, payload dto.PaymentCreateRequest, actor ActivityActor) (dto.PaymentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PaymentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentResponse{}, ErrStudentNotFound
		}
		return dto.PaymentResponse{}, err
	}

	paidAt := s.now().UTC()
	if payload.PaymentDate != "" {
		paidAt, err = parseDate(payload.PaymentDate)
		if err != nil {
			return dto.PaymentResponse{}, err
		}
	}

	month := strings.TrimSpace(payload.Month)
	if month == "" {
		month = paidAt.Format("2006-01")
	}
	method := payload.Method
	if method == "" {
		method = models.PaymentMethodCash
	}

	payment := models.Payment{
		StudentID:   student.ID,
		Amount:      payload.Amount,
		PaymentDate: paidAt,
		Month:       month,
		Method:      method,
		Note:        strings.TrimSpace(payload.Note),
		ReceivedBy:  actorPtr(actor),
	}

	previousStatus := student.Status
	next := addMonth(paidAt)
	student.LastPaymentDate = &paidAt
	student.NextPaymentDate = &next
	if student.Status == models.StudentStatusDebtor {
		student.Status = models.StudentStatusActive
	}

	if err := s.payments.CreateAndApply(ctx, &payment, &student); err != nil {
		return dto.PaymentResponse{}, err
	}
	payment.Student = student

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     models.ActionPaymentLogged,
		EntityType: "payment",
		EntityID:   uintPtr(payment.ID),
		Metadata: map[string]interface{}{
			"student_id":      student.ID,
			"amount":          payment.Amount,
			"month":           payment.Month,
			"previous_status": previousStatus,
			"status":          student.Status,
		},
	})
	publishEvent(ctx, s.bus, s.logger, events.Event{
		Subject:   events.PaymentLogged,
		EntityID:  payment.ID,
		StudentID: student.ID,
		ActorID:   actorPtr(actor),
	})

	return dto.NewPaymentResponse(payment), nil
}
