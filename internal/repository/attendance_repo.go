package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// AttendanceFilter defines query filters.
type AttendanceFilter struct {
	GroupID   *uint
	StudentID *uint
	Date      *time.Time
	Limit     int
}

// AttendanceRepository persists attendance marks and lesson scores.
type AttendanceRepository interface {
	List(ctx context.Context, filter AttendanceFilter) ([]models.Attendance, error)
	GetByID(ctx context.Context, id uint) (models.Attendance, error)
	Upsert(ctx context.Context, record *models.Attendance) (models.Attendance, error)
	Update(ctx context.Context, record *models.Attendance) error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs the attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]models.Attendance, error) {
	query := r.db.WithContext(ctx).Model(&models.Attendance{}).Preload("Student")

	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", models.LessonDate(*filter.Date))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var records []models.Attendance
	if err := query.Order("date DESC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id uint) (models.Attendance, error) {
	var record models.Attendance
	if err := r.db.WithContext(ctx).Preload("Student").First(&record, id).Error; err != nil {
		return models.Attendance{}, err
	}
	return record, nil
}

// Upsert writes the record keyed by (student, group, date). A score is only
// overwritten when the incoming record carries one.
func (r *attendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (models.Attendance, error) {
	record.Date = models.LessonDate(record.Date)

	updates := map[string]interface{}{
		"status":     record.Status,
		"marked_by":  record.MarkedBy,
		"updated_at": time.Now(),
	}
	if record.Score != nil {
		updates["score"] = *record.Score
	}

	err := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "group_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(record).Error
	if err != nil {
		return models.Attendance{}, err
	}

	var stored models.Attendance
	if err := r.db.WithContext(ctx).Preload("Student").
		Where("student_id = ? AND group_id = ? AND date = ?", record.StudentID, record.GroupID, record.Date).
		First(&stored).Error; err != nil {
		return models.Attendance{}, err
	}
	return stored, nil
}

func (r *attendanceRepository) Update(ctx context.Context, record *models.Attendance) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(record).Error
}
