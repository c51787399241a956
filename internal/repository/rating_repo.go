package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// ScoreTotal is the per-student sum and count of one kind of assessment.
type ScoreTotal struct {
	StudentID uint
	Total     int64
	Count     int64
}

// RatingRepository exposes the aggregate reads used by the rating engine.
type RatingRepository interface {
	GradedTaskScores(ctx context.Context, studentID uint) ([]int, error)
	AttendanceScores(ctx context.Context, studentID uint) ([]int, error)
	GradedTaskTotals(ctx context.Context) ([]ScoreTotal, error)
	AttendanceTotals(ctx context.Context) ([]ScoreTotal, error)
	RatedStudents(ctx context.Context) ([]models.Student, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository constructs the rating repository.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) GradedTaskScores(ctx context.Context, studentID uint) ([]int, error) {
	var scores []int
	err := r.db.WithContext(ctx).Model(&models.TaskSubmission{}).
		Where("student_id = ?", studentID).
		Where("status = ?", models.SubmissionStatusGraded).
		Where("score IS NOT NULL").
		Order("id ASC").
		Pluck("score", &scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *ratingRepository) AttendanceScores(ctx context.Context, studentID uint) ([]int, error) {
	var scores []int
	err := r.db.WithContext(ctx).Model(&models.Attendance{}).
		Where("student_id = ?", studentID).
		Where("score IS NOT NULL").
		Order("id ASC").
		Pluck("score", &scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *ratingRepository) GradedTaskTotals(ctx context.Context) ([]ScoreTotal, error) {
	var totals []ScoreTotal
	err := r.db.WithContext(ctx).Model(&models.TaskSubmission{}).
		Select("student_id, SUM(score) AS total, COUNT(*) AS count").
		Where("status = ?", models.SubmissionStatusGraded).
		Where("score IS NOT NULL").
		Group("student_id").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *ratingRepository) AttendanceTotals(ctx context.Context) ([]ScoreTotal, error) {
	var totals []ScoreTotal
	err := r.db.WithContext(ctx).Model(&models.Attendance{}).
		Select("student_id, SUM(score) AS total, COUNT(*) AS count").
		Where("score IS NOT NULL").
		Group("student_id").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *ratingRepository) RatedStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Preload("Group").
		Where("status IN ?", models.RatedStudentStatuses).
		Order("id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
