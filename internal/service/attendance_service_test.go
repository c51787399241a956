package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

func TestAttendanceServiceMarkUpserts(t *testing.T) {
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Python A1")
	student := seedStudent(t, db, group.ID, "Aziza Karimova", models.StudentStatusActive)
	activity := &memoryActivityRepo{}
	svc := NewAttendanceService(
		repository.NewAttendanceRepository(db),
		repository.NewStudentRepository(db),
		testValidator(),
		NewActivityService(activity, testLogger()),
		nil,
		testLogger(),
	)
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	first, err := svc.Mark(ctx, dto.AttendanceMarkRequest{
		StudentID: student.ID,
		GroupID:   group.ID,
		Date:      "2024-03-04",
		Status:    "LATE",
		Score:     intPtr(70),
	}, admin)
	require.NoError(t, err)
	require.Equal(t, "2024-03-04", first.Date)

	second, err := svc.Mark(ctx, dto.AttendanceMarkRequest{
		StudentID: student.ID,
		GroupID:   group.ID,
		Date:      "2024-03-04",
		Status:    "PRESENT",
	}, admin)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "PRESENT", second.Status)
	require.NotNil(t, second.Score)
	require.Equal(t, 70, *second.Score)

	var total int64
	require.NoError(t, db.Model(&models.Attendance{}).Count(&total).Error)
	require.Equal(t, int64(1), total)

	require.Len(t, activity.entries, 1)
	require.Equal(t, models.ActionAttendanceScored, activity.entries[0].Action)
}

func TestAttendanceServiceScoreIsAdminOnly(t *testing.T) {
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Python A1")
	student := seedStudent(t, db, group.ID, "Aziza Karimova", models.StudentStatusActive)
	svc := NewAttendanceService(repository.NewAttendanceRepository(db), repository.NewStudentRepository(db), testValidator(), nil, nil, testLogger())
	ctx := context.Background()
	manager := ActivityActor{ID: 2, Role: models.UserRoleManager}

	_, err := svc.Mark(ctx, dto.AttendanceMarkRequest{
		StudentID: student.ID,
		GroupID:   group.ID,
		Date:      "2024-03-04",
		Status:    "PRESENT",
		Score:     intPtr(90),
	}, manager)
	require.ErrorIs(t, err, ErrScoreForbidden)

	record, err := svc.Mark(ctx, dto.AttendanceMarkRequest{
		StudentID: student.ID,
		GroupID:   group.ID,
		Date:      "2024-03-04",
		Status:    "PRESENT",
	}, manager)
	require.NoError(t, err)
	require.Nil(t, record.Score)

	_, err = svc.Update(ctx, record.ID, dto.AttendanceUpdateRequest{Score: intPtr(90)}, manager)
	require.ErrorIs(t, err, ErrScoreForbidden)

	updated, err := svc.Update(ctx, record.ID, dto.AttendanceUpdateRequest{Score: intPtr(90)}, ActivityActor{ID: 1, Role: models.UserRoleAdmin})
	require.NoError(t, err)
	require.Equal(t, 90, *updated.Score)

	_, err = svc.Update(ctx, record.ID+100, dto.AttendanceUpdateRequest{Status: strPtr("ABSENT")}, manager)
	require.ErrorIs(t, err, ErrAttendanceNotFound)
}

func TestAttendanceServiceMarkRequiresStudentGroup(t *testing.T) {
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Python A1")
	other := seedGroup(t, db, "Web B2")
	student := seedStudent(t, db, group.ID, "Aziza Karimova", models.StudentStatusActive)
	svc := NewAttendanceService(repository.NewAttendanceRepository(db), repository.NewStudentRepository(db), testValidator(), nil, nil, testLogger())
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	for _, groupID := range []uint{other.ID, other.ID + 100} {
		_, err := svc.Mark(ctx, dto.AttendanceMarkRequest{
			StudentID: student.ID,
			GroupID:   groupID,
			Date:      "2024-03-04",
			Status:    "PRESENT",
			Score:     intPtr(90),
		}, admin)
		require.ErrorIs(t, err, ErrInvalidGroup)
	}

	var total int64
	require.NoError(t, db.Model(&models.Attendance{}).Count(&total).Error)
	require.Zero(t, total)
}

func TestAttendanceServiceClearScore(t *testing.T) {
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Python A1")
	student := seedStudent(t, db, group.ID, "Aziza Karimova", models.StudentStatusActive)
	activity := &memoryActivityRepo{}
	svc := NewAttendanceService(
		repository.NewAttendanceRepository(db),
		repository.NewStudentRepository(db),
		testValidator(),
		NewActivityService(activity, testLogger()),
		nil,
		testLogger(),
	)
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}
	manager := ActivityActor{ID: 2, Role: models.UserRoleManager}

	record, err := svc.Mark(ctx, dto.AttendanceMarkRequest{
		StudentID: student.ID,
		GroupID:   group.ID,
		Date:      "2024-03-04",
		Status:    "PRESENT",
		Score:     intPtr(80),
	}, admin)
	require.NoError(t, err)
	require.Equal(t, 80, *record.Score)

	_, err = svc.Update(ctx, record.ID, dto.AttendanceUpdateRequest{ClearScore: true}, manager)
	require.ErrorIs(t, err, ErrScoreForbidden)

	_, err = svc.Update(ctx, record.ID, dto.AttendanceUpdateRequest{Score: intPtr(50), ClearScore: true}, admin)
	require.ErrorIs(t, err, ErrScoreConflict)

	cleared, err := svc.Update(ctx, record.ID, dto.AttendanceUpdateRequest{ClearScore: true}, admin)
	require.NoError(t, err)
	require.Nil(t, cleared.Score)
	require.Equal(t, "PRESENT", cleared.Status)

	var stored models.Attendance
	require.NoError(t, db.First(&stored, record.ID).Error)
	require.Nil(t, stored.Score)

	require.Len(t, activity.entries, 2)
	require.Equal(t, models.ActionAttendanceScoreCleared, activity.entries[1].Action)
}
