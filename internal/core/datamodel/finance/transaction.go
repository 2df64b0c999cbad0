package finance

import "time"

const (
	KindFee     = "fee"
	KindExpense = "expense"

	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Transaction amounts are stored in cents to avoid floating point drift.
type Transaction struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	SchoolID    string    `json:"school_id" gorm:"column:school_id;index;not null"`
	StudentID   string    `json:"student_id" gorm:"column:student_id;index"`
	Kind        string    `json:"kind" gorm:"not null"`
	Label       string    `json:"label"`
	AmountCents int64     `json:"amount_cents" gorm:"column:amount_cents;not null"`
	Status      string    `json:"status" gorm:"default:pending"`
	Date        time.Time `json:"date" gorm:"type:date"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Transaction) TableName() string {
	return "finance_transactions"
}
