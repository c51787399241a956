package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/learncenter-api/internal/auth"
	"github.com/noah-isme/learncenter-api/internal/config"
	"github.com/noah-isme/learncenter-api/internal/handler"
	"github.com/noah-isme/learncenter-api/internal/middleware"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
	"github.com/noah-isme/learncenter-api/internal/router"
	"github.com/noah-isme/learncenter-api/internal/service"
)

type flowFixture struct {
	app          *fiber.App
	db           *gorm.DB
	tokens       *auth.TokenManager
	adminToken   string
	managerToken string
	group        models.Group
	student      models.Student
	task         models.Task
}

func setupFlowApp(t *testing.T) *flowFixture {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	tokens := auth.NewTokenManager("staff-secret", "student-secret", time.Hour)

	users := repository.NewUserRepository(db)
	students := repository.NewStudentRepository(db)
	groups := repository.NewGroupRepository(db)
	tasks := repository.NewTaskRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	payments := repository.NewPaymentRepository(db)
	attendance := repository.NewAttendanceRepository(db)

	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	authService := service.NewAuthService(users, tokens, validate, logger)
	studentService := service.NewStudentService(students, groups, validate, activity, nil, logger)
	taskService := service.NewTaskService(tasks, groups, nil, nil, validate, logger)
	submissionService := service.NewSubmissionService(submissions, tasks, validate, activity, nil, logger)
	ratingService := service.NewRatingService(repository.NewRatingRepository(db), students, nil, time.Minute, logger)
	cabinetService := service.NewCabinetService(service.CabinetRepositories{
		Students:    students,
		Payments:    payments,
		Attendance:  attendance,
		Tasks:       tasks,
		Submissions: submissions,
	}, tokens, validate, logger)

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test"}, router.Dependencies{
		AuthHandler:    handler.NewAuthHandler(authService, logger),
		CabinetHandler: handler.NewCabinetHandler(cabinetService, submissionService, ratingService, logger),
		StudentHandler: handler.NewStudentHandler(studentService, logger),
		TaskHandler:    handler.NewTaskHandler(taskService, submissionService, logger),
		RatingHandler:  handler.NewRatingHandler(ratingService, logger),
		StaffAuth:      middleware.StaffAuth(tokens, users),
		StudentAuth:    middleware.StudentAuth(tokens, students),
	})

	f := &flowFixture{app: app, db: db, tokens: tokens}

	adminHash, err := auth.HashPassword("admin-secret")
	require.NoError(t, err)
	admin := models.User{Email: "admin@example.com", PasswordHash: adminHash, FullName: "Admin", Role: models.UserRoleAdmin, Status: models.UserStatusActive}
	manager := models.User{Email: "manager@example.com", PasswordHash: adminHash, FullName: "Manager", Role: models.UserRoleManager, Status: models.UserStatusActive}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&manager).Error)
	f.adminToken, err = tokens.IssueStaff(admin.ID, admin.Email, admin.Role)
	require.NoError(t, err)
	f.managerToken, err = tokens.IssueStaff(manager.ID, manager.Email, manager.Role)
	require.NoError(t, err)

	f.group = models.Group{Name: "Python A1", Status: models.GroupStatusActive, DaysOfWeek: models.EncodeDays([]string{"Mon"})}
	require.NoError(t, db.Create(&f.group).Error)

	studentHash, err := auth.HashPassword("student-secret")
	require.NoError(t, err)
	login := "aziza"
	f.student = models.Student{
		FullName:     "Aziza Karimova",
		Phone:        "+998901112233",
		Login:        &login,
		PasswordHash: studentHash,
		GroupID:      f.group.ID,
		Status:       models.StudentStatusActive,
		JoinedDate:   time.Now().UTC(),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&f.student).Error)

	f.task = models.Task{Title: "Loops", Description: "Print 1..10", GroupID: f.group.ID, MaxScore: 100, Status: models.TaskStatusActive}
	require.NoError(t, db.Omit(clause.Associations).Create(&f.task).Error)

	return f
}

func (f *flowFixture) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func dataField(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := payload["data"].(map[string]interface{})
	require.True(t, ok, "expected data object in %v", payload)
	return data
}

func TestHealthIsPublic(t *testing.T) {
	f := setupFlowApp(t)

	status, body := f.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", dataField(t, body)["status"])
}

func TestTokenNamespacesAreSeparate(t *testing.T) {
	f := setupFlowApp(t)

	status, _ := f.do(t, http.MethodGet, "/api/students", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := f.do(t, http.MethodPost, "/api/student-auth/login", "", map[string]string{"login": "AZIZA", "password": "student-secret"})
	require.Equal(t, http.StatusOK, status)
	studentToken, _ := dataField(t, body)["token"].(string)
	require.NotEmpty(t, studentToken)

	status, _ = f.do(t, http.MethodGet, "/api/students", studentToken, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, http.MethodGet, "/api/student-auth/dashboard", f.adminToken, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = f.do(t, http.MethodGet, "/api/student-auth/profile", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Aziza Karimova", dataField(t, body)["full_name"])

	status, _ = f.do(t, http.MethodGet, "/api/students", f.managerToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodPost, "/api/student-auth/login", "", map[string]string{"login": "aziza", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestSubmitAndGradeFlow(t *testing.T) {
	f := setupFlowApp(t)

	studentToken, err := f.tokens.IssueStudent(f.student.ID, "aziza")
	require.NoError(t, err)
	submitPath := fmt.Sprintf("/api/student-auth/tasks/%d/submit", f.task.ID)

	status, body := f.do(t, http.MethodPost, submitPath, studentToken, map[string]string{"code": "print('hi')"})
	require.Equal(t, http.StatusCreated, status)
	submissionID := uint(dataField(t, body)["id"].(float64))

	gradePath := fmt.Sprintf("/api/tasks/submissions/%d/grade", submissionID)
	status, _ = f.do(t, http.MethodPut, gradePath, f.managerToken, map[string]interface{}{"score": 80})
	require.Equal(t, http.StatusForbidden, status)

	status, _ = f.do(t, http.MethodPut, gradePath, f.adminToken, map[string]interface{}{"score": 101})
	require.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, http.MethodPut, gradePath, f.adminToken, map[string]interface{}{"score": 80, "feedback": "nice"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, models.SubmissionStatusGraded, dataField(t, body)["status"])

	status, body = f.do(t, http.MethodGet, "/api/student-auth/my-rating", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 80, dataField(t, body)["average_score"])
	require.EqualValues(t, 1, dataField(t, body)["rank"])

	status, body = f.do(t, http.MethodPost, submitPath, studentToken, map[string]string{"code": "print('hello')"})
	require.Equal(t, http.StatusOK, status)
	resubmitted := dataField(t, body)
	require.Equal(t, models.SubmissionStatusPending, resubmitted["status"])
	require.Nil(t, resubmitted["score"])

	status, body = f.do(t, http.MethodGet, "/api/tasks/submissions/all", f.managerToken, nil)
	require.Equal(t, http.StatusOK, status)
	items, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	status, _ = f.do(t, http.MethodPost, "/api/student-auth/tasks/999/submit", studentToken, map[string]string{"code": "x"})
	require.Equal(t, http.StatusNotFound, status)
}

func TestStudentWritesRequireAdmin(t *testing.T) {
	f := setupFlowApp(t)

	payload := map[string]interface{}{
		"full_name": "Timur Aliev",
		"phone":     "+998907778899",
		"group_id":  f.group.ID,
		"login":     "aziza",
	}

	status, _ := f.do(t, http.MethodPost, "/api/students", f.managerToken, payload)
	require.Equal(t, http.StatusForbidden, status)

	status, body := f.do(t, http.MethodPost, "/api/students", f.adminToken, payload)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, service.ErrLoginTaken.Error(), body["message"])

	status, body = f.do(t, http.MethodGet, "/api/students/check-login/aziza", f.managerToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, dataField(t, body)["exists"])

	status, _ = f.do(t, http.MethodGet, "/api/students/9999", f.managerToken, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodGet, "/api/students/abc", f.managerToken, nil)
	require.Equal(t, http.StatusBadRequest, status)
}
