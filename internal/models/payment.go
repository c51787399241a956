package models

import "time"

// Payment methods.
const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
)

// Payment is a tuition payment received from a student.
type Payment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	Amount      int64     `gorm:"not null" json:"amount"`
	PaymentDate time.Time `gorm:"not null;index" json:"payment_date"`
	Month       string    `gorm:"size:7;index" json:"month"`
	Method      string    `gorm:"size:16;not null;default:CASH" json:"method"`
	Note        string    `gorm:"type:text" json:"note"`
	ReceivedBy  *uint     `json:"received_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Student     Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
