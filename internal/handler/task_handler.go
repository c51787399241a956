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

// TaskHandler wires staff task and grading endpoints.
type TaskHandler struct {
	tasks       service.TaskService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(tasks service.TaskService, submissions service.SubmissionService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		submissions: submissions,
		logger:      logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register attaches task routes. Submission routes are registered before the
// task id routes so that "submissions" is never parsed as an identifier.
func (h *TaskHandler) Register(router fiber.Router) {
	staff := middleware.RequireRole(models.UserRoleAdmin, models.UserRoleManager)
	adminOnly := middleware.RequireRole(models.UserRoleAdmin)

	router.Get("/submissions/all", h.listSubmissions)
	router.Put("/submissions/:id/grade", adminOnly, h.grade)

	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", staff, h.create)
	router.Put("/:id", staff, h.update)
	router.Delete("/:id", staff, h.delete)
	router.Post("/:id/image", staff, h.uploadImage)
}

func (h *TaskHandler) list(c *fiber.Ctx) error {
	groupID, err := parseQueryUint(c, "group_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid group_id")
	}

	tasks, err := h.tasks.List(requestContext(c), dto.TaskListRequest{
		GroupID: groupID,
		Status:  c.Query("status"),
	})
	if err != nil {
		return handleError(c, h.logger, err, "failed to list tasks")
	}
	return utils.SendSuccess(c, "tasks retrieved", tasks)
}

func (h *TaskHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	task, err := h.tasks.Get(requestContext(c), id)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load task")
	}
	return utils.SendSuccess(c, "task retrieved", task)
}

func (h *TaskHandler) create(c *fiber.Ctx) error {
	var payload dto.TaskCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	task, err := h.tasks.Create(requestContext(c), payload, activityActorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to create task")
	}
	return utils.SendCreated(c, "task created", task)
}

func (h *TaskHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TaskUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	task, err := h.tasks.Update(requestContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to update task")
	}
	return utils.SendSuccess(c, "task updated", task)
}

func (h *TaskHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.tasks.Delete(requestContext(c), id, activityActorFromContext(c)); err != nil {
		return handleError(c, h.logger, err, "failed to delete task")
	}
	return utils.SendSuccess(c, "task deleted", nil)
}

func (h *TaskHandler) uploadImage(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("image")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrImageRequired.Error())
	}

	result, err := h.tasks.UploadImage(requestContext(c), id, file)
	if err != nil {
		return handleError(c, h.logger, err, "failed to upload image")
	}
	return utils.SendSuccess(c, "image uploaded", result)
}

func (h *TaskHandler) listSubmissions(c *fiber.Ctx) error {
	groupID, err := parseQueryUint(c, "group_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid group_id")
	}
	taskID, err := parseQueryUint(c, "task_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task_id")
	}

	submissions, err := h.submissions.List(requestContext(c), dto.SubmissionListRequest{
		TaskID:  taskID,
		GroupID: groupID,
		Status:  c.Query("status"),
	})
	if err != nil {
		return handleError(c, h.logger, err, "failed to list submissions")
	}
	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *TaskHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.submissions.Grade(requestContext(c), id, payload, activityActorFromContext(c))
	if err != nil {
		return handleError(c, h.logger, err, "failed to grade submission")
	}
	return utils.SendSuccess(c, "submission graded", submission)
}
