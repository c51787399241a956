package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/auth"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
	"github.com/noah-isme/learncenter-api/internal/utils"
)

// Request locals populated by the authentication middlewares.
const (
	LocalUserID    = "user_id"
	LocalUserRole  = "user_role"
	LocalUserEmail = "user_email"
	LocalStudent   = "student"
)

// StaffAuth verifies a staff bearer token and reloads the account, which must
// still exist and be active.
func StaffAuth(tokens *auth.TokenManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization token required")
		}

		identity, err := tokens.Verify(token, auth.TokenTypeStaff)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		user, err := users.GetByID(c.UserContext(), identity.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "user not found")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to verify user")
		}
		if !user.IsActive() {
			return utils.SendError(c, fiber.StatusUnauthorized, "user is inactive")
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUserRole, user.Role)
		c.Locals(LocalUserEmail, user.Email)

		return c.Next()
	}
}

// StudentAuth verifies a student bearer token and loads the student with the
// group and course attached.
func StudentAuth(tokens *auth.TokenManager, students repository.StudentRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization token required")
		}

		identity, err := tokens.Verify(token, auth.TokenTypeStudent)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		student, err := students.GetByID(c.UserContext(), identity.StudentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "student not found")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to verify student")
		}

		c.Locals(LocalStudent, student)
		return c.Next()
	}
}

// StudentFromContext returns the student attached by StudentAuth.
func StudentFromContext(c *fiber.Ctx) (models.Student, bool) {
	student, ok := c.Locals(LocalStudent).(models.Student)
	return student, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	const bearer = "bearer "
	if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(authorization[len(bearer):])
	return token, token != ""
}
