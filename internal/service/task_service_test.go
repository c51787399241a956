package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

type memoryStorage struct {
	uploaded map[string][]byte
}

func (m *memoryStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	m.uploaded[name] = data
	return "https://files.test/" + name, nil
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}

func TestTaskServiceCreateAndUpload(t *testing.T) {
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Python A1")
	storage := &memoryStorage{}
	bus := events.NewLocalBus(testLogger())
	var deleted []uint
	require.NoError(t, bus.Subscribe(events.TaskDeleted, func(_ context.Context, event events.Event) {
		deleted = append(deleted, event.EntityID)
	}))
	svc := NewTaskService(repository.NewTaskRepository(db), repository.NewGroupRepository(db), storage, bus, testValidator(), testLogger())
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	_, err := svc.Create(ctx, dto.TaskCreateRequest{Title: "Empty", Description: "<script>alert(1)</script>", GroupID: group.ID}, admin)
	require.ErrorIs(t, err, ErrTaskDescriptionEmpty)

	_, err = svc.Create(ctx, dto.TaskCreateRequest{Title: "Lost", Description: "text", GroupID: group.ID + 100}, admin)
	require.ErrorIs(t, err, ErrInvalidGroup)

	task, err := svc.Create(ctx, dto.TaskCreateRequest{
		Title:       "Loops",
		Description: "Print numbers <b>1..10</b>",
		GroupID:     group.ID,
		Deadline:    "2024-04-01",
	}, admin)
	require.NoError(t, err)
	require.Equal(t, models.DefaultTaskMaxScore, task.MaxScore)
	require.Equal(t, models.TaskStatusActive, task.Status)
	require.NotNil(t, task.Deadline)

	_, err = svc.UploadImage(ctx, task.ID, buildFileHeader(t, "notes.txt", []byte("plain text")))
	require.ErrorIs(t, err, ErrImageTypeNotAllowed)

	image, err := svc.UploadImage(ctx, task.ID, buildFileHeader(t, "diagram.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, "https://files.test/diagram.png", image.ImageURL)
	require.Contains(t, storage.uploaded, "diagram.png")

	stored, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, image.ImageURL, stored.ImageURL)

	require.NoError(t, svc.Delete(ctx, task.ID, admin))
	require.ErrorIs(t, svc.Delete(ctx, task.ID, admin), ErrTaskNotFound)
	require.Equal(t, []uint{task.ID}, deleted)
}

func TestTaskServiceUploadWithoutStorage(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewTaskService(repository.NewTaskRepository(db), repository.NewGroupRepository(db), nil, nil, testValidator(), testLogger())

	_, err := svc.UploadImage(context.Background(), 1, buildFileHeader(t, "diagram.png", pngHeader))
	require.ErrorIs(t, err, ErrUploadUnavailable)
}

func TestTaskServiceAcceptsZeroMaxScore(t *testing.T) {
	db := setupServiceDB(t)
	group := seedGroup(t, db, "Python A1")
	svc := NewTaskService(repository.NewTaskRepository(db), repository.NewGroupRepository(db), nil, nil, testValidator(), testLogger())
	ctx := context.Background()
	admin := ActivityActor{ID: 1, Role: models.UserRoleAdmin}

	task, err := svc.Create(ctx, dto.TaskCreateRequest{Title: "Warm-up", Description: "Read chapter 1", GroupID: group.ID, MaxScore: intPtr(0)}, admin)
	require.NoError(t, err)
	require.Equal(t, 0, task.MaxScore)

	var stored models.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Equal(t, 0, stored.MaxScore)

	updated, err := svc.Update(ctx, task.ID, dto.TaskUpdateRequest{MaxScore: intPtr(40)})
	require.NoError(t, err)
	require.Equal(t, 40, updated.MaxScore)

	_, err = svc.Update(ctx, task.ID, dto.TaskUpdateRequest{MaxScore: intPtr(-1)})
	require.Error(t, err)
	_, err = svc.Update(ctx, task.ID, dto.TaskUpdateRequest{MaxScore: intPtr(101)})
	require.Error(t, err)
}
