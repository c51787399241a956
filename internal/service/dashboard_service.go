package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/models"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

const dashboardCachePrefix = "learncenter:dashboard:admin:"

// DashboardService produces the staff dashboard figures.
type DashboardService interface {
	Get(ctx context.Context) (dto.AdminDashboardResponse, error)
	Invalidate(ctx context.Context) error
	Subscribe(bus events.Bus) error
}

type dashboardService struct {
	groups   repository.GroupRepository
	students repository.StudentRepository
	payments repository.PaymentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator. A nil cache disables caching.
func NewDashboardService(groups repository.GroupRepository, students repository.StudentRepository, payments repository.PaymentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &dashboardService{
		groups:   groups,
		students: students,
		payments: payments,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) Get(ctx context.Context) (dto.AdminDashboardResponse, error) {
	now := s.now().UTC()
	cacheKey := s.cacheKey(now)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AdminDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Msg("dashboard cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	response, err := s.build(ctx, now)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, s.cacheKey(s.now().UTC())).Err()
}

// Subscribe drops the cached dashboard when students or payments change.
func (s *dashboardService) Subscribe(bus events.Bus) error {
	if bus == nil {
		return nil
	}
	for _, subject := range []string{events.StudentChanged, events.PaymentLogged} {
		if err := bus.Subscribe(subject, func(ctx context.Context, _ events.Event) {
			if err := s.Invalidate(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
			}
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *dashboardService) build(ctx context.Context, now time.Time) (dto.AdminDashboardResponse, error) {
	activeGroups, err := s.groups.CountByStatus(ctx, models.GroupStatusActive)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	naborGroups, err := s.groups.CountByStatus(ctx, models.GroupStatusNabor)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	activeStudents, err := s.students.CountByStatus(ctx, models.StudentStatusActive)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	debtors, err := s.students.CountByStatus(ctx, models.StudentStatusDebtor)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	revenue, err := s.payments.SumBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	groups, err := s.groups.List(ctx, repository.GroupFilter{Status: models.GroupStatusActive})
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}
	todays := make([]dto.GroupSummary, 0)
	for _, group := range groups {
		if group.MeetsOn(now.Weekday()) {
			todays = append(todays, *dto.NewGroupSummary(group))
		}
	}

	endOfDay := models.LessonDate(now).Add(24*time.Hour - time.Nanosecond)
	due, err := s.students.ListPaymentDue(ctx, endOfDay)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	return dto.AdminDashboardResponse{
		ActiveGroupsCount:   activeGroups,
		NaborGroupsCount:    naborGroups,
		ActiveStudentsCount: activeStudents,
		DebtorsCount:        debtors,
		MonthlyRevenue:      revenue,
		TodaysGroups:        todays,
		PaymentsDueToday:    dto.NewStudentResponses(due),
		GeneratedAt:         now,
	}, nil
}

func (s *dashboardService) cacheKey(now time.Time) string {
	return fmt.Sprintf("%s%s", dashboardCachePrefix, now.Format("2006-01-02"))
}
