package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	TaskID    *uint
	StudentID *uint
	GroupID   *uint
	Status    string
}

// SubmissionRepository defines data operations for task submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.TaskSubmission, error)
	GetByID(ctx context.Context, id uint) (models.TaskSubmission, error)
	GetByTaskAndStudent(ctx context.Context, taskID, studentID uint) (models.TaskSubmission, error)
	Upsert(ctx context.Context, submission *models.TaskSubmission) (bool, error)
	Update(ctx context.Context, submission *models.TaskSubmission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.TaskSubmission{}).
		Preload("Task").
		Preload("Student").
		Preload("Student.Group")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.TaskSubmission, error) {
	query := r.baseQuery(ctx)

	if filter.TaskID != nil {
		query = query.Where("task_submissions.task_id = ?", *filter.TaskID)
	}
	if filter.StudentID != nil {
		query = query.Where("task_submissions.student_id = ?", *filter.StudentID)
	}
	if filter.Status != "" {
		query = query.Where("task_submissions.status = ?", filter.Status)
	}
	if filter.GroupID != nil {
		query = query.Joins("JOIN tasks ON tasks.id = task_submissions.task_id").
			Where("tasks.group_id = ?", *filter.GroupID)
	}

	var submissions []models.TaskSubmission
	if err := query.Order("task_submissions.submitted_at DESC").Order("task_submissions.id DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.TaskSubmission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) GetByTaskAndStudent(ctx context.Context, taskID, studentID uint) (models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := r.baseQuery(ctx).
		Where("task_submissions.task_id = ?", taskID).
		Where("task_submissions.student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.TaskSubmission{}, err
	}
	return submission, nil
}

// Upsert writes the submission keyed by (task, student). An existing row is
// overwritten in place and its grade is discarded. The boolean reports whether
// a new row was inserted.
func (r *submissionRepository) Upsert(ctx context.Context, submission *models.TaskSubmission) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.TaskSubmission{}).
			Where("task_id = ? AND student_id = ?", submission.TaskID, submission.StudentID).
			Count(&existing).Error; err != nil {
			return err
		}
		created = existing == 0

		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "task_id"}, {Name: "student_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"code":         submission.Code,
				"description":  submission.Description,
				"submitted_at": submission.SubmittedAt,
				"status":       models.SubmissionStatusPending,
				"score":        nil,
				"feedback":     "",
				"graded_at":    nil,
				"graded_by":    nil,
				"updated_at":   time.Now(),
			}),
		}).Create(submission).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.TaskSubmission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(submission).Error
}
