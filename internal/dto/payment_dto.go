package dto

import (
	"time"

	"github.com/noah-isme/learncenter-api/internal/models"
)

// PaymentCreateRequest logs a tuition payment.
type PaymentCreateRequest struct {
	StudentID   uint   `json:"student_id" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	PaymentDate string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Month       string `json:"month" validate:"omitempty,datetime=2006-01"`
	Method      string `json:"method" validate:"omitempty,oneof=CASH CARD TRANSFER"`
	Note        string `json:"note" validate:"omitempty,max=1000"`
}

// PaymentListRequest filters payments.
type PaymentListRequest struct {
	StudentID *uint
	Month     string `validate:"omitempty,datetime=2006-01"`
}

// PaymentResponse is the public view of a payment.
type PaymentResponse struct {
	ID          uint      `json:"id"`
	StudentID   uint      `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	Amount      int64     `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
	Month       string    `json:"month"`
	Method      string    `json:"method"`
	Note        string    `json:"note"`
	ReceivedBy  *uint     `json:"received_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPaymentResponse converts a payment model.
func NewPaymentResponse(payment models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          payment.ID,
		StudentID:   payment.StudentID,
		StudentName: payment.Student.FullName,
		Amount:      payment.Amount,
		PaymentDate: payment.PaymentDate,
		Month:       payment.Month,
		Method:      payment.Method,
		Note:        payment.Note,
		ReceivedBy:  payment.ReceivedBy,
		CreatedAt:   payment.CreatedAt,
	}
}

// NewPaymentResponses converts a list of payments.
func NewPaymentResponses(payments []models.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		responses = append(responses, NewPaymentResponse(payment))
	}
	return responses
}
