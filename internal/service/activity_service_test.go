package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/middleware"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func TestActivityServiceRecordMasksSensitiveMetadata(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	entry, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "admin",
		Action:     models.ActionStudentUpdated,
		EntityType: "Student",
		EntityID:   uintPtr(5),
		Metadata: map[string]interface{}{
			"email":    "student@example.com",
			"password": "secret",
			"field":    "status",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "s***t@example.com", entry.Metadata["email"])
	require.Equal(t, "***", entry.Metadata["password"])
	require.Equal(t, "status", entry.Metadata["field"])
	require.Equal(t, "ADMIN", entry.ActorRole)
	require.Equal(t, "student", entry.EntityType)
	require.Len(t, repo.entries, 1)
}

func TestActivityServiceRecordCarriesCorrelationID(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())

	ctx := middleware.ContextWithCorrelation(context.Background(), "req-42")
	_, err := svc.Record(ctx, ActivityEntry{ActorID: 2, Action: models.ActionPaymentLogged, EntityType: "payment"})
	require.NoError(t, err)
	require.Equal(t, "req-42", repo.entries[0].CorrelationID)
	require.Equal(t, "SYSTEM", repo.entries[0].ActorRole)
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "student"})
	require.Error(t, err)
}

func TestActivityServiceListNormalisesPaging(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, testLogger())
	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), ActivityEntry{ActorID: 1, Action: "payment.logged", EntityType: "payment"})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), dto.ActivityListRequest{PageSize: 500})
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	require.Equal(t, 1, resp.Pagination.Page)
	require.Equal(t, 20, resp.Pagination.PageSize)
	require.Equal(t, 1, resp.Pagination.TotalPages)
}

func TestMaskEmailAddress(t *testing.T) {
	require.Equal(t, "", maskEmailAddress(" "))
	require.Equal(t, "***", maskEmailAddress("not-an-email"))
	require.Equal(t, "***", maskEmailAddress("@example.com"))
	require.Equal(t, "a***@example.com", maskEmailAddress("ab@example.com"))
}
