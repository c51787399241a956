package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/learncenter-api/internal/config"
	"github.com/noah-isme/learncenter-api/internal/handler"
	"github.com/noah-isme/learncenter-api/internal/middleware"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/observability"
	"github.com/noah-isme/learncenter-api/internal/utils"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	CabinetHandler    *handler.CabinetHandler
	StudentHandler    *handler.StudentHandler
	CourseHandler     *handler.CourseHandler
	GroupHandler      *handler.GroupHandler
	TaskHandler       *handler.TaskHandler
	AttendanceHandler *handler.AttendanceHandler
	PaymentHandler    *handler.PaymentHandler
	DashboardHandler  *handler.DashboardHandler
	RatingHandler     *handler.RatingHandler
	ActivityHandler   *handler.ActivityHandler
	StaffAuth         fiber.Handler
	StudentAuth       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	staffAuth := deps.StaffAuth
	if staffAuth == nil {
		staffAuth = func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusUnauthorized, "staff authentication not configured")
		}
	}
	studentAuth := deps.StudentAuth
	if studentAuth == nil {
		studentAuth = func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusUnauthorized, "student authentication not configured")
		}
	}

	adminOnly := middleware.RequireRole(models.UserRoleAdmin)

	var loginLimiter fiber.Handler
	if cfg.LoginRateLimit > 0 {
		loginLimiter = middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute)
	}

	// Staff authentication
	if deps.AuthHandler != nil {
		authGroup := api.Group("/auth")
		deps.AuthHandler.RegisterPublic(authGroup, loginLimiter)
		deps.AuthHandler.RegisterProtected(authGroup.Group("", staffAuth))
	}
	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", staffAuth, adminOnly))
	}

	// Student cabinet
	if deps.CabinetHandler != nil {
		cabinet := api.Group("/student-auth")
		deps.CabinetHandler.RegisterPublic(cabinet, loginLimiter)
		deps.CabinetHandler.RegisterProtected(cabinet.Group("", studentAuth))
	}

	// Staff panel
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", staffAuth))
	}
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/courses", staffAuth))
	}
	if deps.GroupHandler != nil {
		deps.GroupHandler.Register(api.Group("/groups", staffAuth))
	}
	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(api.Group("/tasks", staffAuth))
	}
	if deps.AttendanceHandler != nil {
		deps.AttendanceHandler.Register(api.Group("/attendance", staffAuth))
	}
	if deps.PaymentHandler != nil {
		deps.PaymentHandler.Register(api.Group("/payments", staffAuth))
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", staffAuth))
	}
	if deps.RatingHandler != nil {
		deps.RatingHandler.Register(api.Group("/rating", staffAuth))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", staffAuth, adminOnly))
	}
}
