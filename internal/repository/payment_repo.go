package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	StudentID *uint
	Month     string
	Limit     int
}

// PaymentRepository persists tuition payments.
type PaymentRepository interface {
	List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error)
	CreateAndApply(ctx context.Context, payment *models.Payment, student *models.Student) error
	SumForStudent(ctx context.Context, studentID uint) (int64, error)
	SumBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository constructs the payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{}).Preload("Student")

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Month != "" {
		query = query.Where("month = ?", filter.Month)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var payments []models.Payment
	if err := query.Order("payment_date DESC").Order("id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// CreateAndApply stores the payment and the student's updated billing dates atomically.
func (r *paymentRepository) CreateAndApply(ctx context.Context, payment *models.Payment, student *models.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(payment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Student{}).
			Where("id = ?", student.ID).
			Updates(map[string]interface{}{
				"status":            student.Status,
				"last_payment_date": student.LastPaymentDate,
				"next_payment_date": student.NextPaymentDate,
			}).Error
	})
}

func (r *paymentRepository) SumForStudent(ctx context.Context, studentID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("student_id = ?", studentID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *paymentRepository) SumBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("payment_date >= ? AND payment_date < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
