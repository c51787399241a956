package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

type submissionFixture struct {
	svc      SubmissionService
	repo     repository.SubmissionRepository
	activity *memoryActivityRepo
	student  models.Student
	task     models.Task
	subjects []string
}

func setupSubmissionService(t *testing.T, maxScore int) *submissionFixture {
	t.Helper()
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Python A1")
	student := seedStudent(t, db, group.ID, "Aziza Karimova", models.StudentStatusActive)
	task := seedTask(t, db, group.ID, maxScore)

	fixture := &submissionFixture{
		repo:     repository.NewSubmissionRepository(db),
		activity: &memoryActivityRepo{},
		student:  student,
		task:     task,
	}
	bus := events.NewLocalBus(testLogger())
	require.NoError(t, bus.Subscribe(events.AllSubjects, func(ctx context.Context, event events.Event) {
		fixture.subjects = append(fixture.subjects, event.Subject)
	}))

	fixture.svc = NewSubmissionService(
		fixture.repo,
		repository.NewTaskRepository(db),
		testValidator(),
		NewActivityService(fixture.activity, testLogger()),
		bus,
		testLogger(),
	)
	return fixture
}

func TestSubmissionServiceResubmitResetsGrade(t *testing.T) {
	f := setupSubmissionService(t, 100)
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	first, created, err := f.svc.Submit(ctx, f.student, f.task.ID, dto.SubmitRequest{Code: "print('hi')"})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, models.SubmissionStatusPending, first.Status)

	graded, err := f.svc.Grade(ctx, first.ID, dto.GradeRequest{Score: intPtr(85), Feedback: "<b>Good</b> job"}, admin)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, graded.Status)
	require.Equal(t, 85, *graded.Score)
	require.Contains(t, graded.Feedback, "job")
	require.Len(t, f.activity.entries, 1)
	require.Equal(t, models.ActionSubmissionGraded, f.activity.entries[0].Action)

	second, created, err := f.svc.Submit(ctx, f.student, f.task.ID, dto.SubmitRequest{Code: "print('hello')"})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, models.SubmissionStatusPending, second.Status)
	require.Nil(t, second.Score)
	require.Empty(t, second.Feedback)
	require.Nil(t, second.GradedAt)
	require.Equal(t, "print('hello')", second.Code)

	all, err := f.repo.List(ctx, repository.SubmissionFilter{TaskID: &f.task.ID})
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.Equal(t, []string{
		events.SubmissionSubmitted,
		events.SubmissionGraded,
		events.SubmissionSubmitted,
	}, f.subjects)
}

func TestSubmissionServiceRejectsForeignTasks(t *testing.T) {
	f := setupSubmissionService(t, 100)
	ctx := context.Background()

	outsider := f.student
	outsider.GroupID = f.student.GroupID + 100
	_, _, err := f.svc.Submit(ctx, outsider, f.task.ID, dto.SubmitRequest{Code: "x = 1"})
	require.ErrorIs(t, err, ErrTaskNotFound)

	_, _, err = f.svc.Submit(ctx, f.student, f.task.ID+100, dto.SubmitRequest{Code: "x = 1"})
	require.ErrorIs(t, err, ErrTaskNotFound)

	_, _, err = f.svc.Submit(ctx, f.student, f.task.ID, dto.SubmitRequest{})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestSubmissionServiceRejectsClosedTask(t *testing.T) {
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Web B2")
	student := seedStudent(t, db, group.ID, "Timur Aliev", models.StudentStatusActive)
	task := seedTask(t, db, group.ID, 100)
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", task.ID).Update("status", models.TaskStatusClosed).Error)

	svc := NewSubmissionService(repository.NewSubmissionRepository(db), repository.NewTaskRepository(db), testValidator(), nil, nil, testLogger())
	_, _, err := svc.Submit(context.Background(), student, task.ID, dto.SubmitRequest{Code: "x = 1"})
	require.ErrorIs(t, err, ErrTaskClosed)
}

func TestSubmissionServiceGradeBounds(t *testing.T) {
	f := setupSubmissionService(t, 100)
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	submission, _, err := f.svc.Submit(ctx, f.student, f.task.ID, dto.SubmitRequest{Code: "x = 1"})
	require.NoError(t, err)

	for _, score := range []int{0, 100} {
		graded, err := f.svc.Grade(ctx, submission.ID, dto.GradeRequest{Score: intPtr(score)}, admin)
		require.NoError(t, err)
		require.Equal(t, score, *graded.Score)
	}

	for _, score := range []int{-1, 101} {
		_, err := f.svc.Grade(ctx, submission.ID, dto.GradeRequest{Score: intPtr(score)}, admin)
		var validationErrs validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
	}

	_, err = f.svc.Grade(ctx, submission.ID, dto.GradeRequest{}, admin)
	require.Error(t, err)

	_, err = f.svc.Grade(ctx, submission.ID+100, dto.GradeRequest{Score: intPtr(50)}, admin)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionServiceGradeRespectsTaskMaxScore(t *testing.T) {
	f := setupSubmissionService(t, 50)
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	submission, _, err := f.svc.Submit(ctx, f.student, f.task.ID, dto.SubmitRequest{Code: "x = 1"})
	require.NoError(t, err)
	require.Equal(t, 50, submission.MaxScore)

	_, err = f.svc.Grade(ctx, submission.ID, dto.GradeRequest{Score: intPtr(60)}, admin)
	require.ErrorIs(t, err, ErrScoreExceedsMax)

	graded, err := f.svc.Grade(ctx, submission.ID, dto.GradeRequest{Score: intPtr(50)}, admin)
	require.NoError(t, err)
	require.Equal(t, 50, *graded.Score)
}

func TestSubmissionServiceGradeZeroMaxScoreTask(t *testing.T) {
	f := setupSubmissionService(t, 0)
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	submission, _, err := f.svc.Submit(ctx, f.student, f.task.ID, dto.SubmitRequest{Code: "print('ok')"})
	require.NoError(t, err)
	require.Equal(t, 0, submission.MaxScore)

	_, err = f.svc.Grade(ctx, submission.ID, dto.GradeRequest{Score: intPtr(1)}, admin)
	require.ErrorIs(t, err, ErrScoreExceedsMax)

	graded, err := f.svc.Grade(ctx, submission.ID, dto.GradeRequest{Score: intPtr(0)}, admin)
	require.NoError(t, err)
	require.Equal(t, 0, *graded.Score)
}
