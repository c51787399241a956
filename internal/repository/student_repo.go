package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// StudentFilter narrows student listings.
type StudentFilter struct {
	GroupID  *uint
	Status   string
	Statuses []string
	Search   string
}

// StudentRepository provides access to student records.
type StudentRepository interface {
	List(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByLogin(ctx context.Context, login string) (models.Student, error)
	LoginTaken(ctx context.Context, login string, excludeID uint) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	ListPaymentDue(ctx context.Context, until time.Time) ([]models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Student{}).
		Preload("Group").
		Preload("Group.Course")
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, error) {
	query := r.baseQuery(ctx)

	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("(LOWER(full_name) LIKE ? OR phone LIKE ?)", like, like)
	}

	var students []models.Student
	if err := query.Order("created_at DESC").Order("id DESC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.baseQuery(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) GetByLogin(ctx context.Context, login string) (models.Student, error) {
	var student models.Student
	if err := r.baseQuery(ctx).Where("login = ?", strings.TrimSpace(login)).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) LoginTaken(ctx context.Context, login string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{}).Where("login = ?", strings.TrimSpace(login))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(student).Error
}

func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Student{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Student{}).Where("status = ?", status).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *studentRepository) ListPaymentDue(ctx context.Context, until time.Time) ([]models.Student, error) {
	var students []models.Student
	err := r.baseQuery(ctx).
		Where("status IN ?", models.RatedStudentStatuses).
		Where("next_payment_date IS NOT NULL AND next_payment_date <= ?", until).
		Order("next_payment_date ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
