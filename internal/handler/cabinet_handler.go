package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/middleware"
	"github.com/noah-isme/learncenter-api/internal/service"
	"github.com/noah-isme/learncenter-api/internal/utils"
)

// CabinetHandler serves the student cabinet.
type CabinetHandler struct {
	cabinet     service.CabinetService
	submissions service.SubmissionService
	ratings     service.RatingService
	logger      zerolog.Logger
}

// NewCabinetHandler constructs the handler.
func NewCabinetHandler(cabinet service.CabinetService, submissions service.SubmissionService, ratings service.RatingService, logger zerolog.Logger) *CabinetHandler {
	return &CabinetHandler{
		cabinet:     cabinet,
		submissions: submissions,
		ratings:     ratings,
		logger:      logger.With().Str("component", "cabinet_handler").Logger(),
	}
}

// RegisterPublic attaches the student login route.
func (h *CabinetHandler) RegisterPublic(router fiber.Router, limiter fiber.Handler) {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Post("/login", limiter, h.login)
}

// RegisterProtected attaches routes that need a student token.
func (h *CabinetHandler) RegisterProtected(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/profile", h.profile)
	router.Get("/payments", h.payments)
	router.Get("/attendance", h.attendance)
	router.Get("/tasks", h.tasks)
	router.Get("/tasks/:id", h.task)
	router.Post("/tasks/:id/submit", h.submit)
	router.Get("/submissions", h.listSubmissions)
	router.Get("/my-rating", h.myRating)
}

func (h *CabinetHandler) login(c *fiber.Ctx) error {
	var payload dto.StudentLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.cabinet.Login(requestContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to login")
	}
	return utils.SendSuccess(c, "login successful", result)
}

func (h *CabinetHandler) dashboard(c *fiber.Ctx) error {
	student, ok := middleware.StudentFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "student context missing")
	}

	result, err := h.cabinet.Dashboard(requestContext(c), student)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load dashboard")
	}
	return utils.SendSuccess(c, "dashboard retrieved", result)
}

func (h *CabinetHandler) profile(c *fiber.Ctx) error {
	student, ok := middleware.StudentFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "student context missing")
	}
	return utils.SendSuccess(c, "profile retrieved", dto.NewStudentResponse(student))
}

func (h *CabinetHandler) payments(c *fiber.Ctx) error {
	student, ok := middleware.StudentFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "student context missing")
	}

	result, err := h.cabinet.Payments(requestContext(c), student)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load payments")
	}
	return utils.SendSuccess(c, "payments retrieved", result)
}

func (h *CabinetHandler) attendance(c *fiber.Ctx) error {
	student, ok := middleware.StudentFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "student context missing")
	}

	result, err := h.cabinet.Attendance(requestContext(c), student)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load attendance")
	}
	return utils.SendSuccess(c, "attendance retrieved", result)
}

func (h *CabinetHandler) tasks(c *fiber.Ctx) error {
	student, ok := middleware.StudentFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "student context missing")
	}

	result, err := h.cabinet.Tasks(requestContext(c), student)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load tasks")
	}
	return utils.SendSuccess(c, "tasks retrieved", result)
}

func (h *CabinetHandler) task(c *fiber.Ctx) error {
	student, ok := middleware.StudentFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "student context missing")
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.cabinet.Task(requestContext(c), student, id)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load task")
	}
	return utils.SendSuccess(c, "task retrieved", result)
}

func (h *CabinetHandler) submit(c *fiber.Ctx) error {
	student, ok := middleware.StudentFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "student context missing")
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, created, err := h.submissions.Submit(requestContext(c), student, id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to submit solution")
	}
	if created {
		return utils.SendCreated(c, "submission created", submission)
	}
	return utils.SendSuccess(c, "submission updated", submission)
}

func (h *CabinetHandler) listSubmissions(c *fiber.Ctx) error {
	student, ok := middleware.StudentFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "student context missing")
	}

	result, err := h.submissions.ListForStudent(requestContext(c), student.ID)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load submissions")
	}
	return utils.SendSuccess(c, "submissions retrieved", result)
}

func (h *CabinetHandler) myRating(c *fiber.Ctx) error {
	student, ok := middleware.StudentFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "student context missing")
	}

	result, err := h.ratings.StudentRating(requestContext(c), student.ID)
	if err != nil {
		return handleError(c, h.logger, err, "failed to compute rating")
	}
	return utils.SendSuccess(c, "rating retrieved", result)
}
