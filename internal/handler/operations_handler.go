package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/middleware"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/service"
	"github.com/noah-isme/learncenter-api/internal/utils"
)

// AttendanceHandler wires attendance endpoints.
type AttendanceHandler struct {
	service service.AttendanceService
	logger  zerolog.Logger
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service service.AttendanceService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register attaches attendance routes. Score changes are authorised by the service.
func (h *AttendanceHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.mark)
	router.Put("/:id", h.update)
}

func (h *AttendanceHandler) list(c *fiber.Ctx) error {
	groupID, err := parseQueryUint(c, "group_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid group_id")
	}
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}

	records, err := h.service.List(requestContext(c), dto.AttendanceListRequest{
		GroupID:   groupID,
		StudentID: studentID,
		Date:      c.Query("date"),
	})
	if err != nil {
		return handleError(c, h.logger, err, "failed to list attendance")
	}
	return utils.SendSuccess(c, "attendance retrieved", records)
}

func (h *AttendanceHandler) mark(c *fiber.Ctx) error {
	var payload dto.AttendanceMarkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.service.Mark(requestContext(c), payload, activityActorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to mark attendance")
	}
	return utils.SendSuccess(c, "attendance marked", record)
}

func (h *AttendanceHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AttendanceUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.service.Update(requestContext(c), id, payload, activityActorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to update attendance")
	}
	return utils.SendSuccess(c, "attendance updated", record)
}

// PaymentHandler wires payment endpoints.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler constructs the handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("component", "payment_handler").Logger(),
	}
}

// Register attaches payment routes.
func (h *PaymentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.RequireRole(models.UserRoleAdmin, models.UserRoleManager), h.create)
}

func (h *PaymentHandler) list(c *fiber.Ctx) error {
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student_id")
	}

	payments, err := h.service.List(requestContext(c), dto.PaymentListRequest{
		StudentID: studentID,
		Month:     c.Query("month"),
	})
	if err != nil {
		return handleError(c, h.logger, err, "failed to list payments")
	}
	return utils.SendSuccess(c, "payments retrieved", payments)
}

func (h *PaymentHandler) create(c *fiber.Ctx) error {
	var payload dto.PaymentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	payment, err := h.service.Create(requestContext(c), payload, activityActorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to log payment")
	}
	return utils.SendCreated(c, "payment logged", payment)
}
