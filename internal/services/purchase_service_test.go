package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sjperalta/feria-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseRegister(t *testing.T) {
	env := newTestEnv(t)
	purchase := env.seedPurchase(t, 10000, 10000, 5000)

	assert.NotZero(t, purchase.ID)
	assert.Equal(t, int64(25000), purchase.TotalCents)
	assert.Equal(t, models.PaymentStatusUnpaid, purchase.Status)

	loaded := env.loadPurchase(t, purchase.ID)
	require.NoError(t, loaded.Verify())
	require.Len(t, loaded.Installments, 3)
	for i, inst := range loaded.Installments {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, purchase.ID, inst.PurchaseID)
	}
	assert.Equal(t, "2026-03-15", loaded.Installments[2].DueDate.Format(models.DateLayout))

	var entry models.AuditLog
	require.NoError(t, env.db.Where("action = ?", models.AuditActionPurchaseRegistered).First(&entry).Error)
	assert.Equal(t, models.AuditEntityPurchase, entry.Entity)
	assert.Equal(t, purchase.ID, entry.EntityID)
	assert.Equal(t, testActorID, entry.ActorID)

	var after struct {
		Purchase     models.PurchaseSnapshot      `json:"purchase"`
		Installments []models.InstallmentSnapshot `json:"installments"`
	}
	require.NoError(t, json.Unmarshal(entry.After, &after))
	assert.Equal(t, int64(25000), after.Purchase.TotalCents)
	assert.Len(t, after.Installments, 3)
}

func TestPurchaseRegister_InvalidPlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	plan := func(amounts ...int64) []InstallmentPlanItem {
		items := make([]InstallmentPlanItem, 0, len(amounts))
		for i, a := range amounts {
			items = append(items, InstallmentPlanItem{AmountCents: a, DueDate: firstDueDay.AddDate(0, i, 0)})
		}
		return items
	}

	tests := []struct {
		name  string
		input RegisterPurchaseInput
	}{
		{name: "no installments", input: RegisterPurchaseInput{ExhibitorID: testExhibit, FairID: testFair, TotalCents: 1000}},
		{name: "zero total", input: RegisterPurchaseInput{ExhibitorID: testExhibit, FairID: testFair, TotalCents: 0, Installments: plan(0)}},
		{name: "sum below total", input: RegisterPurchaseInput{ExhibitorID: testExhibit, FairID: testFair, TotalCents: 3000, Installments: plan(1000, 1000)}},
		{name: "sum above total", input: RegisterPurchaseInput{ExhibitorID: testExhibit, FairID: testFair, TotalCents: 1000, Installments: plan(1000, 1)}},
		{name: "non positive installment", input: RegisterPurchaseInput{ExhibitorID: testExhibit, FairID: testFair, TotalCents: 1000, Installments: plan(1500, -500)}},
		{name: "missing due date", input: RegisterPurchaseInput{ExhibitorID: testExhibit, FairID: testFair, TotalCents: 1000, Installments: []InstallmentPlanItem{{AmountCents: 1000}}}},
		{name: "missing exhibitor", input: RegisterPurchaseInput{FairID: testFair, TotalCents: 1000, Installments: plan(1000)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			purchase, err := env.purchases.Register(ctx, tt.input, testActorID)
			assert.Nil(t, purchase)
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}

	var purchases, audits int64
	require.NoError(t, env.db.Model(&models.Purchase{}).Count(&purchases).Error)
	require.NoError(t, env.db.Model(&models.AuditLog{}).Count(&audits).Error)
	assert.Zero(t, purchases)
	assert.Zero(t, audits)
}

func TestPurchaseRegister_RollsBackWhenAuditFails(t *testing.T) {
	env := newTestEnv(t)
	env.purchases.audit = NewAuditService(failingAuditRepo{})

	_, err := env.purchases.Register(context.Background(), RegisterPurchaseInput{
		ExhibitorID:  testExhibit,
		FairID:       testFair,
		TotalCents:   1000,
		Installments: []InstallmentPlanItem{{AmountCents: 1000, DueDate: firstDueDay}},
	}, testActorID)
	assert.ErrorIs(t, err, ErrPersistence)

	var purchases, installments int64
	require.NoError(t, env.db.Model(&models.Purchase{}).Count(&purchases).Error)
	require.NoError(t, env.db.Model(&models.Installment{}).Count(&installments).Error)
	assert.Zero(t, purchases)
	assert.Zero(t, installments)
}

func TestPurchaseGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	purchase := env.seedPurchase(t, 1000, 1000, 1000)

	loaded, err := env.purchases.Get(ctx, purchase.ID)
	require.NoError(t, err)

	// First installment fell due on Jan 15, before the fixed clock.
	resp := loaded.ToResponse(fixedNow)
	assert.Equal(t, models.PaymentStatusUnpaid, resp.Status)
	assert.Equal(t, models.PaymentStatusOverdue, resp.DisplayStatus)
	assert.True(t, resp.Installments[0].Overdue)
	assert.False(t, resp.Installments[1].Overdue)
	assert.Equal(t, int64(3000), resp.BalanceCents)

	_, err = env.purchases.Get(ctx, 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurchaseCountOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	purchase := env.seedPurchase(t, 1000, 1000, 1000)

	count, err := env.purchases.CountOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = env.settlement.RecordPayment(ctx, purchase.Installments[0].ID, 1000, testActorID)
	require.NoError(t, err)

	count, err = env.purchases.CountOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
