package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name    string
		paid    int64
		total   int64
		want    PaymentStatus
		wantErr bool
	}{
		{name: "nothing paid", paid: 0, total: 30000, want: PaymentStatusUnpaid},
		{name: "partially paid", paid: 10000, total: 30000, want: PaymentStatusPartiallyPaid},
		{name: "one cent short", paid: 29999, total: 30000, want: PaymentStatusPartiallyPaid},
		{name: "fully paid", paid: 30000, total: 30000, want: PaymentStatusPaid},
		{name: "overpaid", paid: 30001, total: 30000, wantErr: true},
		{name: "negative", paid: -1, total: 30000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DerivePaymentStatus(tt.paid, tt.total)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestPaymentStatus_OverdueIsNotStorable(t *testing.T) {
	assert.False(t, PaymentStatusOverdue.Valid())
	assert.False(t, PaymentStatus("cancelled").Valid())
}

func TestPurchase_DisplayStatus(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	paidAt := today

	purchase := &Purchase{
		TotalCents: 30000,
		PaidCents:  15000,
		Status:     PaymentStatusPartiallyPaid,
		Installments: []Installment{
			{Number: 1, AmountCents: 15000, PaidCents: 15000, PaidAt: &paidAt, DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
			{Number: 2, AmountCents: 15000, DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		},
	}

	// Due today is not overdue yet.
	assert.Equal(t, PaymentStatusPartiallyPaid, purchase.DisplayStatus(today))
	assert.Equal(t, PaymentStatusOverdue, purchase.DisplayStatus(today.AddDate(0, 0, 1)))

	// The stored status is never touched by the read-time derivation.
	assert.Equal(t, PaymentStatusPartiallyPaid, purchase.Status)
}

func TestPurchase_Verify(t *testing.T) {
	paidAt := time.Now()
	valid := func() *Purchase {
		return &Purchase{
			TotalCents: 30000,
			PaidCents:  25000,
			Status:     PaymentStatusPartiallyPaid,
			Installments: []Installment{
				{Number: 1, AmountCents: 15000, PaidCents: 15000, PaidAt: &paidAt},
				{Number: 2, AmountCents: 15000, PaidCents: 10000},
			},
		}
	}

	assert.NoError(t, valid().Verify())

	drift := valid()
	drift.PaidCents = 20000
	assert.ErrorContains(t, drift.Verify(), "differs from installments sum")

	wrongStatus := valid()
	wrongStatus.Status = PaymentStatusUnpaid
	assert.ErrorContains(t, wrongStatus.Verify(), "expected partially_paid")

	gap := valid()
	gap.Installments[1].Number = 3
	assert.ErrorContains(t, gap.Verify(), "numbering")

	missingPaidAt := valid()
	missingPaidAt.Installments[0].PaidAt = nil
	assert.ErrorContains(t, missingPaidAt.Verify(), "paid_at")
}

func TestInstallment_Snapshot(t *testing.T) {
	inst := Installment{ID: 7, PurchaseID: 3, Number: 2, AmountCents: 2000, PaidCents: 1000,
		DueDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}

	snap := inst.Snapshot()
	assert.Equal(t, "2026-05-01", snap.DueDate)
	assert.Nil(t, snap.PaidAt)
	assert.Equal(t, int64(1000), inst.RemainingCents())
}
