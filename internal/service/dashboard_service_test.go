package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

func TestDashboardServiceCachesAndInvalidates(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	db := setupServiceDB(t)
	monday := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	active := seedGroup(t, db, "Python A1")
	recruiting := models.Group{Name: "Web B2", Status: models.GroupStatusNabor, DaysOfWeek: models.EncodeDays([]string{"Tue"})}
	require.NoError(t, db.Create(&recruiting).Error)

	due := seedStudent(t, db, active.ID, "Aziza Karimova", models.StudentStatusActive)
	dueDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Student{}).Where("id = ?", due.ID).Update("next_payment_date", dueDate).Error)
	seedStudent(t, db, active.ID, "Bobur Aliev", models.StudentStatusDebtor)
	seedStudent(t, db, recruiting.ID, "New Lead", models.StudentStatusLead)

	payment := models.Payment{StudentID: due.ID, Amount: 300, PaymentDate: time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), Month: "2024-03", Method: models.PaymentMethodCash}
	require.NoError(t, db.Omit(clause.Associations).Create(&payment).Error)
	previous := models.Payment{StudentID: due.ID, Amount: 999, PaymentDate: time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC), Month: "2024-02", Method: models.PaymentMethodCash}
	require.NoError(t, db.Omit(clause.Associations).Create(&previous).Error)

	svc := NewDashboardService(
		repository.NewGroupRepository(db),
		repository.NewStudentRepository(db),
		repository.NewPaymentRepository(db),
		redisClient,
		time.Minute,
		testLogger(),
	)
	svc.(*dashboardService).now = func() time.Time { return monday }
	bus := events.NewLocalBus(testLogger())
	require.NoError(t, svc.Subscribe(bus))
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), first.ActiveGroupsCount)
	require.Equal(t, int64(1), first.NaborGroupsCount)
	require.Equal(t, int64(1), first.ActiveStudentsCount)
	require.Equal(t, int64(1), first.DebtorsCount)
	require.Equal(t, int64(300), first.MonthlyRevenue)
	require.Len(t, first.TodaysGroups, 1)
	require.Equal(t, "Python A1", first.TodaysGroups[0].Name)
	require.Len(t, first.PaymentsDueToday, 1)
	require.Equal(t, due.ID, first.PaymentsDueToday[0].ID)
	require.True(t, server.Exists("learncenter:dashboard:admin:2024-03-04"))

	seedStudent(t, db, active.ID, "Late Payer", models.StudentStatusDebtor)

	cached, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), cached.DebtorsCount)

	require.NoError(t, bus.Publish(ctx, events.Event{Subject: events.StudentChanged}))
	require.False(t, server.Exists("learncenter:dashboard:admin:2024-03-04"))

	fresh, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), fresh.DebtorsCount)
}
