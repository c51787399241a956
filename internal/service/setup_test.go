package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func seedGroup(t *testing.T, db *gorm.DB, name string) models.Group {
	t.Helper()
	group := models.Group{
		Name:       name,
		DaysOfWeek: models.EncodeDays([]string{"Mon", "Wed"}),
		Time:       "18:00",
		Status:     models.GroupStatusActive,
	}
	require.NoError(t, db.Create(&group).Error)
	return group
}

func seedStudent(t *testing.T, db *gorm.DB, groupID uint, name, status string) models.Student {
	t.Helper()
	student := models.Student{
		FullName:   name,
		Phone:      "+998900000000",
		GroupID:    groupID,
		Status:     status,
		JoinedDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Omit("Group").Create(&student).Error)
	require.NoError(t, db.Preload("Group").First(&student, student.ID).Error)
	return student
}

func seedTask(t *testing.T, db *gorm.DB, groupID uint, maxScore int) models.Task {
	t.Helper()
	task := models.Task{
		Title:       "Loops",
		Description: "Print numbers from 1 to 10",
		GroupID:     groupID,
		MaxScore:    maxScore,
		Status:      models.TaskStatusActive,
	}
	require.NoError(t, db.Omit("Group").Create(&task).Error)
	return task
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}
