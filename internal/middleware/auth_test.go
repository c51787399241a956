package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/auth"
	"github.com/noah-isme/learncenter-api/internal/middleware"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

type authFixture struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	admin   models.User
	retired models.User
	student models.Student
}

func setupAuthFixture(t *testing.T) authFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	admin := models.User{Email: "admin@example.com", PasswordHash: "x", Role: models.UserRoleAdmin, Status: models.UserStatusActive}
	retired := models.User{Email: "old@example.com", PasswordHash: "x", Role: models.UserRoleManager, Status: models.UserStatusInactive}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&retired).Error)

	group := models.Group{Name: "Go-1", Status: models.GroupStatusActive}
	require.NoError(t, db.Create(&group).Error)
	login := "ali"
	student := models.Student{FullName: "Ali", Phone: "+100", GroupID: group.ID, Status: models.StudentStatusActive, Login: &login, JoinedDate: time.Now()}
	require.NoError(t, db.Omit("Group").Create(&student).Error)

	tokens := auth.NewTokenManager("staff-secret", "student-secret", time.Hour)
	users := repository.NewUserRepository(db)
	students := repository.NewStudentRepository(db)

	app := fiber.New()
	app.Get("/staff", middleware.StaffAuth(tokens, users), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": c.Locals(middleware.LocalUserRole)})
	})
	app.Get("/cabinet", middleware.StudentAuth(tokens, students), func(c *fiber.Ctx) error {
		student, ok := middleware.StudentFromContext(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"group": student.Group.Name})
	})

	return authFixture{app: app, tokens: tokens, admin: admin, retired: retired, student: student}
}

func call(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(context.Background())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestStaffAuthAcceptsActiveUser(t *testing.T) {
	fx := setupAuthFixture(t)

	token, err := fx.tokens.IssueStaff(fx.admin.ID, fx.admin.Email, fx.admin.Role)
	require.NoError(t, err)

	require.Equal(t, fiber.StatusOK, call(t, fx.app, "/staff", token))
}

func TestStaffAuthRejectsMissingAndInactive(t *testing.T) {
	fx := setupAuthFixture(t)

	require.Equal(t, fiber.StatusUnauthorized, call(t, fx.app, "/staff", ""))

	token, err := fx.tokens.IssueStaff(fx.retired.ID, fx.retired.Email, fx.retired.Role)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, call(t, fx.app, "/staff", token))

	ghost, err := fx.tokens.IssueStaff(999, "ghost@example.com", models.UserRoleAdmin)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, call(t, fx.app, "/staff", ghost))
}

func TestTokensDoNotCrossNamespaces(t *testing.T) {
	fx := setupAuthFixture(t)

	studentToken, err := fx.tokens.IssueStudent(fx.student.ID, "ali")
	require.NoError(t, err)
	staffToken, err := fx.tokens.IssueStaff(fx.admin.ID, fx.admin.Email, fx.admin.Role)
	require.NoError(t, err)

	require.Equal(t, fiber.StatusUnauthorized, call(t, fx.app, "/staff", studentToken))
	require.Equal(t, fiber.StatusUnauthorized, call(t, fx.app, "/cabinet", staffToken))
	require.Equal(t, fiber.StatusOK, call(t, fx.app, "/cabinet", studentToken))
}
