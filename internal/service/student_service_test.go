package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

func TestStudentServiceLoginUniqueness(t *testing.T) {
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Python A1")
	activity := &memoryActivityRepo{}
	svc := NewStudentService(
		repository.NewStudentRepository(db),
		repository.NewGroupRepository(db),
		testValidator(),
		NewActivityService(activity, testLogger()),
		nil,
		testLogger(),
	)
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	first, err := svc.Create(ctx, dto.StudentCreateRequest{
		FullName: "Aziza Karimova",
		Phone:    "+998901112233",
		GroupID:  group.ID,
		Login:    strPtr("Aziza"),
		Password: strPtr("secret1"),
	}, admin)
	require.NoError(t, err)
	require.Equal(t, "aziza", *first.Login)
	require.True(t, first.HasPassword)
	require.Equal(t, models.StudentStatusLead, first.Status)

	_, err = svc.Create(ctx, dto.StudentCreateRequest{
		FullName: "Another Aziza",
		Phone:    "+998904445566",
		GroupID:  group.ID,
		Login:    strPtr(" AZIZA "),
	}, admin)
	require.ErrorIs(t, err, ErrLoginTaken)

	var total int64
	require.NoError(t, db.Model(&models.Student{}).Count(&total).Error)
	require.Equal(t, int64(1), total)

	check, err := svc.CheckLogin(ctx, "AZIZA")
	require.NoError(t, err)
	require.True(t, check.Exists)

	check, err = svc.CheckLogin(ctx, "free-login")
	require.NoError(t, err)
	require.False(t, check.Exists)

	// keeping its own login is not a conflict
	same, err := svc.Update(ctx, first.ID, dto.StudentUpdateRequest{Login: strPtr("aziza")}, admin)
	require.NoError(t, err)
	require.Equal(t, "aziza", *same.Login)

	cleared, err := svc.Update(ctx, first.ID, dto.StudentUpdateRequest{Login: strPtr("")}, admin)
	require.NoError(t, err)
	require.Nil(t, cleared.Login)
	require.False(t, cleared.HasPassword)

	require.Len(t, activity.entries, 3)
	require.Equal(t, models.ActionStudentCreated, activity.entries[0].Action)
}

func TestStudentServiceRejectsUnknownGroup(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewStudentService(repository.NewStudentRepository(db), repository.NewGroupRepository(db), testValidator(), nil, nil, testLogger())

	_, err := svc.Create(context.Background(), dto.StudentCreateRequest{
		FullName: "Lost Student",
		Phone:    "+998900000001",
		GroupID:  42,
	}, ActivityActor{ID: 1, Role: models.UserRoleAdmin})
	require.ErrorIs(t, err, ErrInvalidGroup)
}

func TestStudentServiceDelete(t *testing.T) {
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Python A1")
	student := seedStudent(t, db, group.ID, "Timur Aliev", models.StudentStatusActive)
	svc := NewStudentService(repository.NewStudentRepository(db), repository.NewGroupRepository(db), testValidator(), nil, nil, testLogger())
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	require.NoError(t, svc.Delete(ctx, student.ID, admin))
	require.ErrorIs(t, svc.Delete(ctx, student.ID, admin), ErrStudentNotFound)

	_, err := svc.Get(ctx, student.ID)
	require.ErrorIs(t, err, ErrStudentNotFound)
}
