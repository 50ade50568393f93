package models

import (
	"fmt"
	"time"
)

// PaymentStatus is the settlement state of a purchase
type PaymentStatus string

// Payment status constants. Overdue is only ever produced by DisplayStatus
// and is never persisted.
const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusOverdue       PaymentStatus = "overdue"
)

// Valid reports whether s is a status that may be stored on a purchase
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid:
		return true
	case PaymentStatusOverdue:
		return false
	default:
		return false
	}
}

// DerivePaymentStatus maps an aggregate (paid, total) pair to the stored status.
// It returns an error when the pair violates 0 <= paid <= total.
func DerivePaymentStatus(paidCents, totalCents int64) (PaymentStatus, error) {
	switch {
	case paidCents < 0 || paidCents > totalCents:
		return "", fmt.Errorf("paid amount %d out of range [0, %d]", paidCents, totalCents)
	case paidCents == totalCents:
		return PaymentStatusPaid, nil
	case paidCents == 0:
		return PaymentStatusUnpaid, nil
	default:
		return PaymentStatusPartiallyPaid, nil
	}
}

// Purchase is one exhibitor's financial commitment at one fair
type Purchase struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ExhibitorID uint          `gorm:"not null;index" json:"exhibitor_id"`
	FairID      uint          `gorm:"not null;index" json:"fair_id"`
	TotalCents  int64         `gorm:"not null" json:"total_cents"`
	PaidCents   int64         `gorm:"not null;default:0" json:"paid_cents"`
	PaidAt      *time.Time    `json:"paid_at"`
	Status      PaymentStatus `gorm:"size:20;not null;default:unpaid;index" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Associations
	Installments []Installment `gorm:"foreignKey:PurchaseID;constraint:OnDelete:RESTRICT" json:"installments,omitempty"`
}

// TableName specifies the table name for Purchase
func (Purchase) TableName() string {
	return "purchases"
}

// IsSettled returns true when the purchase has been paid in full
func (p *Purchase) IsSettled() bool {
	return p.PaidCents == p.TotalCents
}

// DisplayStatus returns the stored status, or overdue when the purchase is
// not settled and any of the loaded installments is past due at asOf.
func (p *Purchase) DisplayStatus(asOf time.Time) PaymentStatus {
	if p.Status == PaymentStatusPaid {
		return p.Status
	}
	for i := range p.Installments {
		if p.Installments[i].IsOverdue(asOf) {
			return PaymentStatusOverdue
		}
	}
	return p.Status
}

// Verify checks the aggregate invariants against the loaded installments
func (p *Purchase) Verify() error {
	var sum int64
	for i := range p.Installments {
		inst := &p.Installments[i]
		if inst.Number != i+1 {
			return fmt.Errorf("installment numbering broken at position %d (got %d)", i+1, inst.Number)
		}
		if inst.PaidCents < 0 || inst.PaidCents > inst.AmountCents {
			return fmt.Errorf("installment %d paid %d out of range [0, %d]", inst.Number, inst.PaidCents, inst.AmountCents)
		}
		if (inst.PaidAt != nil) != inst.IsPaid() {
			return fmt.Errorf("installment %d paid_at does not match paid amount", inst.Number)
		}
		sum += inst.PaidCents
	}
	if sum != p.PaidCents {
		return fmt.Errorf("purchase paid %d differs from installments sum %d", p.PaidCents, sum)
	}
	status, err := DerivePaymentStatus(p.PaidCents, p.TotalCents)
	if err != nil {
		return err
	}
	if status != p.Status {
		return fmt.Errorf("purchase status %s, expected %s", p.Status, status)
	}
	if (p.PaidAt != nil) != p.IsSettled() {
		return fmt.Errorf("purchase paid_at does not match paid amount")
	}
	return nil
}

// PurchaseSnapshot is the audited view of a purchase
type PurchaseSnapshot struct {
	ID         uint          `json:"id"`
	TotalCents int64         `json:"total_cents"`
	PaidCents  int64         `json:"paid_cents"`
	PaidAt     *time.Time    `json:"paid_at"`
	Status     PaymentStatus `json:"status"`
}

// Snapshot captures the fields covered by the settlement invariants
func (p *Purchase) Snapshot() PurchaseSnapshot {
	return PurchaseSnapshot{
		ID:         p.ID,
		TotalCents: p.TotalCents,
		PaidCents:  p.PaidCents,
		PaidAt:     copyTime(p.PaidAt),
		Status:     p.Status,
	}
}

// PurchaseResponse is the JSON response format for purchases
type PurchaseResponse struct {
	ID            uint                  `json:"id"`
	ExhibitorID   uint                  `json:"exhibitor_id"`
	FairID        uint                  `json:"fair_id"`
	TotalCents    int64                 `json:"total_cents"`
	PaidCents     int64                 `json:"paid_cents"`
	BalanceCents  int64                 `json:"balance_cents"`
	PaidAt        *time.Time            `json:"paid_at"`
	Status        PaymentStatus         `json:"status"`
	DisplayStatus PaymentStatus         `json:"display_status"`
	Installments  []InstallmentResponse `json:"installments"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ToResponse converts Purchase to PurchaseResponse
func (p *Purchase) ToResponse(asOf time.Time) PurchaseResponse {
	resp := PurchaseResponse{
		ID:            p.ID,
		ExhibitorID:   p.ExhibitorID,
		FairID:        p.FairID,
		TotalCents:    p.TotalCents,
		PaidCents:     p.PaidCents,
		BalanceCents:  p.TotalCents - p.PaidCents,
		PaidAt:        p.PaidAt,
		Status:        p.Status,
		DisplayStatus: p.DisplayStatus(asOf),
		Installments:  make([]InstallmentResponse, 0, len(p.Installments)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for i := range p.Installments {
		resp.Installments = append(resp.Installments, p.Installments[i].ToResponse(asOf))
	}
	return resp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
