package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/dto"
	"github.com/noah-isme/learncenter-api/internal/events"
	"github.com/noah-isme/learncenter-api/internal/observability"
	"github.com/noah-isme/learncenter-api/internal/rating"
	"github.com/noah-isme/learncenter-api/internal/repository"
)

// RatingCacheKey stores the leaderboard snapshot. Bump the version when the
// snapshot layout changes.
const RatingCacheKey = "learncenter:rating:v1:leaderboard"

// RatingService computes student averages and ranks.
type RatingService interface {
	StudentRating(ctx context.Context, studentID uint) (dto.StudentRatingResponse, error)
	Leaderboard(ctx context.Context, req dto.LeaderboardRequest) (dto.LeaderboardResponse, error)
	Invalidate(ctx context.Context) error
	Subscribe(bus events.Bus) error
}

type ratingService struct {
	ratings  repository.RatingRepository
	students repository.StudentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewRatingService constructs the rating service. A nil cache computes the
// leaderboard on every request.
func NewRatingService(ratings repository.RatingRepository, students repository.StudentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) RatingService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ratingService{
		ratings:  ratings,
		students: students,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "rating_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/learncenter-api/internal/service/rating"),
		now:      time.Now,
	}
}

func (s *ratingService) StudentRating(ctx context.Context, studentID uint) (dto.StudentRatingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "rating.student")
	span.SetAttributes(attribute.Int64("rating.student_id", int64(studentID)))
	defer span.End()

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "student_not_found")
			return dto.StudentRatingResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		return dto.StudentRatingResponse{}, err
	}

	taskScores, err := s.ratings.GradedTaskScores(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		return dto.StudentRatingResponse{}, err
	}
	attendanceScores, err := s.ratings.AttendanceScores(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		return dto.StudentRatingResponse{}, err
	}

	board, err := s.board(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.StudentRatingResponse{}, err
	}

	totals := rating.FromScores(taskScores, attendanceScores)
	response := dto.StudentRatingResponse{
		StudentID:        student.ID,
		FullName:         student.FullName,
		AverageScore:     totals.Average(),
		TaskCount:        len(taskScores),
		AttendanceCount:  len(attendanceScores),
		TotalAssessments: int(totals.Count),
		Rank:             board.Rank(student.ID),
		TotalStudents:    board.Size(),
	}
	span.SetAttributes(
		attribute.Int("rating.average", response.AverageScore),
		attribute.Int("rating.rank", response.Rank),
	)

	return response, nil
}

func (s *ratingService) Leaderboard(ctx context.Context, req dto.LeaderboardRequest) (dto.LeaderboardResponse, error) {
	board, err := s.board(ctx)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	total := board.Size()
	if req.GroupID != nil {
		board = board.Filter(*req.GroupID)
	}

	entries := board.Entries
	if entries == nil {
		entries = []rating.Entry{}
	}

	return dto.LeaderboardResponse{
		GeneratedAt:   board.GeneratedAt,
		TotalStudents: total,
		Entries:       entries,
	}, nil
}

func (s *ratingService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, RatingCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate rating cache")
		return err
	}
	return nil
}

// Subscribe drops the cached snapshot whenever a rating-relevant event arrives.
func (s *ratingService) Subscribe(bus events.Bus) error {
	if bus == nil {
		return nil
	}
	return bus.Subscribe(events.AllSubjects, func(ctx context.Context, event events.Event) {
		if err := s.Invalidate(ctx); err == nil {
			s.logger.Debug().Str("subject", event.Subject).Msg("rating cache invalidated")
		}
	})
}

func (s *ratingService) board(ctx context.Context) (rating.Board, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, RatingCacheKey).Bytes()
		switch {
		case err == nil:
			var board rating.Board
			if unmarshalErr := json.Unmarshal(cached, &board); unmarshalErr == nil {
				observability.RatingCacheLookups().WithLabelValues("hit").Inc()
				return board, nil
			}
			observability.RatingCacheLookups().WithLabelValues("error").Inc()
		case errors.Is(err, redis.Nil):
			observability.RatingCacheLookups().WithLabelValues("miss").Inc()
		default:
			observability.RatingCacheLookups().WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Msg("failed to read rating cache")
		}
	}

	board, err := s.build(ctx)
	if err != nil {
		return rating.Board{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(board)
		if err == nil {
			if err := s.cache.Set(ctx, RatingCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store rating cache")
			}
		}
	}

	return board, nil
}

func (s *ratingService) build(ctx context.Context) (rating.Board, error) {
	ctx, span := s.tracer.Start(ctx, "rating.build")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.RatingBuilds().Inc()
		observability.RatingBuildDuration().Observe(time.Since(start).Seconds())
	}()

	candidates, err := s.ratings.RatedStudents(ctx)
	if err != nil {
		span.RecordError(err)
		return rating.Board{}, err
	}
	taskTotals, err := s.ratings.GradedTaskTotals(ctx)
	if err != nil {
		span.RecordError(err)
		return rating.Board{}, err
	}
	attendanceTotals, err := s.ratings.AttendanceTotals(ctx)
	if err != nil {
		span.RecordError(err)
		return rating.Board{}, err
	}

	tasks := indexTotals(taskTotals)
	attendance := indexTotals(attendanceTotals)

	entries := make([]rating.Entry, 0, len(candidates))
	for _, student := range candidates {
		taskTotal := tasks[student.ID]
		attendanceTotal := attendance[student.ID]
		entries = append(entries, rating.Entry{
			StudentID:  student.ID,
			FullName:   student.FullName,
			GroupID:    student.GroupID,
			GroupName:  student.Group.Name,
			Status:     student.Status,
			TaskCount:  taskTotal.Count,
			Attendance: attendanceTotal.Count,
			Totals:     taskTotal.Add(attendanceTotal),
		})
	}

	board := rating.NewBoard(entries, s.now().UTC())
	span.SetAttributes(attribute.Int("rating.candidates", board.Size()))
	return board, nil
}

func indexTotals(totals []repository.ScoreTotal) map[uint]rating.Totals {
	index := make(map[uint]rating.Totals, len(totals))
	for _, total := range totals {
		index[total.StudentID] = rating.Totals{Sum: total.Total, Count: total.Count}
	}
	return index
}
