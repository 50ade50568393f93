package models

import (
	"time"
)

// DateLayout is the wire format for due dates
const DateLayout = "2006-01-02"

// Installment is one scheduled slice of a purchase total
type Installment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PurchaseID  uint       `gorm:"not null;uniqueIndex:idx_installments_purchase_number,priority:1" json:"purchase_id"`
	Number      int        `gorm:"not null;uniqueIndex:idx_installments_purchase_number,priority:2" json:"number"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	PaidCents   int64      `gorm:"not null;default:0" json:"paid_cents"`
	PaidAt      *time.Time `json:"paid_at"`
	DueDate     time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Installment
func (Installment) TableName() string {
	return "installments"
}

// RemainingCents returns what is still owed on the installment
func (i *Installment) RemainingCents() int64 {
	return i.AmountCents - i.PaidCents
}

// IsPaid returns true when the installment is fully paid
func (i *Installment) IsPaid() bool {
	return i.PaidCents == i.AmountCents
}

// IsOverdue returns true if the installment is unpaid and its due date is
// before the calendar day of asOf
func (i *Installment) IsOverdue(asOf time.Time) bool {
	if i.IsPaid() {
		return false
	}
	return TruncateDate(i.DueDate).Before(TruncateDate(asOf))
}

// TruncateDate drops the time of day, keeping the calendar date in UTC
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InstallmentSnapshot is the audited view of an installment
type InstallmentSnapshot struct {
	ID          uint       `json:"id"`
	PurchaseID  uint       `json:"purchase_id"`
	Number      int        `json:"number"`
	AmountCents int64      `json:"amount_cents"`
	PaidCents   int64      `json:"paid_cents"`
	PaidAt      *time.Time `json:"paid_at"`
	DueDate     string     `json:"due_date"`
}

// Snapshot captures the fields covered by the settlement invariants
func (i *Installment) Snapshot() InstallmentSnapshot {
	return InstallmentSnapshot{
		ID:          i.ID,
		PurchaseID:  i.PurchaseID,
		Number:      i.Number,
		AmountCents: i.AmountCents,
		PaidCents:   i.PaidCents,
		PaidAt:      copyTime(i.PaidAt),
		DueDate:     i.DueDate.Format(DateLayout),
	}
}

// InstallmentResponse is the JSON response format for installments
type InstallmentResponse struct {
	ID             uint       `json:"id"`
	Number         int        `json:"number"`
	AmountCents    int64      `json:"amount_cents"`
	PaidCents      int64      `json:"paid_cents"`
	RemainingCents int64      `json:"remaining_cents"`
	PaidAt         *time.Time `json:"paid_at"`
	DueDate        string     `json:"due_date"`
	Overdue        bool       `json:"overdue"`
}

// ToResponse converts Installment to InstallmentResponse
func (i *Installment) ToResponse(asOf time.Time) InstallmentResponse {
	return InstallmentResponse{
		ID:             i.ID,
		Number:         i.Number,
		AmountCents:    i.AmountCents,
		PaidCents:      i.PaidCents,
		RemainingCents: i.RemainingCents(),
		PaidAt:         i.PaidAt,
		DueDate:        i.DueDate.Format(DateLayout),
		Overdue:        i.IsOverdue(asOf),
	}
}
