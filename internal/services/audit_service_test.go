package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/models"
	"github.com/sjperalta/feria-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRecord_NilSnapshotsStoredAsNull(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var entry *models.AuditLog
	err := env.tx.WithinScope(ctx, func(ctx context.Context, scope database.Scope) error {
		var err error
		entry, err = env.audit.Record(ctx, scope, AuditRecord{
			Action:   models.AuditActionPurchaseReconciled,
			Entity:   models.AuditEntityPurchase,
			EntityID: 9,
			ActorID:  systemActor,
			After:    map[string]any{"paid_cents": 0},
		})
		return err
	})
	require.NoError(t, err)
	require.NotZero(t, entry.ID)

	var nullBefore, nullMeta, nullAfter int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).
		Where("id = ? AND before_state IS NULL", entry.ID).Count(&nullBefore).Error)
	require.NoError(t, env.db.Model(&models.AuditLog{}).
		Where("id = ? AND metadata IS NULL", entry.ID).Count(&nullMeta).Error)
	require.NoError(t, env.db.Model(&models.AuditLog{}).
		Where("id = ? AND after_state IS NULL", entry.ID).Count(&nullAfter).Error)

	assert.Equal(t, int64(1), nullBefore)
	assert.Equal(t, int64(1), nullMeta)
	assert.Equal(t, int64(0), nullAfter)

	var stored models.AuditLog
	require.NoError(t, env.db.First(&stored, entry.ID).Error)
	assert.Nil(t, stored.Before)
	assert.JSONEq(t, `{"paid_cents":0}`, string(stored.After))
}

func TestAuditRecord_RegistrationHasNoBefore(t *testing.T) {
	env := newTestEnv(t)
	purchase := env.seedPurchase(t, 1000)

	var count int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).
		Where("action = ? AND entity_id = ? AND before_state IS NULL", models.AuditActionPurchaseRegistered, purchase.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuditRecord_RejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	valid := AuditRecord{
		Action:   models.AuditActionPaymentRecorded,
		Entity:   models.AuditEntityInstallment,
		EntityID: 1,
		ActorID:  testActorID,
	}

	tests := []struct {
		name   string
		mutate func(r *AuditRecord)
	}{
		{name: "unknown action", mutate: func(r *AuditRecord) { r.Action = "PAYMENT_DELETED" }},
		{name: "unknown entity", mutate: func(r *AuditRecord) { r.Entity = "Contract" }},
		{name: "missing entity id", mutate: func(r *AuditRecord) { r.EntityID = 0 }},
		{name: "missing actor", mutate: func(r *AuditRecord) { r.ActorID = 0 }},
		{name: "unencodable snapshot", mutate: func(r *AuditRecord) { r.After = map[string]any{"ch": make(chan int)} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)

			err := env.tx.WithinScope(ctx, func(ctx context.Context, scope database.Scope) error {
				_, err := env.audit.Record(ctx, scope, rec)
				return err
			})
			assert.ErrorIs(t, err, ErrPersistence)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAuditRecord_RequiresScope(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.audit.Record(context.Background(), database.Scope{}, AuditRecord{
		Action:   models.AuditActionPaymentRecorded,
		Entity:   models.AuditEntityInstallment,
		EntityID: 1,
		ActorID:  testActorID,
	})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, database.ErrNoScope)
}

func TestAuditList_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	purchase := env.seedPurchase(t, 3000, 3000)

	for _, inst := range purchase.Installments {
		_, err := env.settlement.RecordPayment(ctx, inst.ID, 1000, testActorID)
		require.NoError(t, err)
	}

	query := repository.NewListQuery()
	query.Filters["action"] = string(models.AuditActionPaymentRecorded)
	logs, total, err := env.audit.List(ctx, query)
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 2)
	assert.Equal(t, purchase.Installments[1].ID, logs[0].EntityID)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))

	query = repository.NewListQuery()
	query.Filters["entity_id"] = "999"
	logs, total, err = env.audit.List(ctx, query)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, logs)
}

func TestMonotonicClock(t *testing.T) {
	frozen := time.Date(2026, 1, 1, 12, 0, 0, 123456789, time.UTC)
	clock := &monotonicClock{now: func() time.Time { return frozen }}

	first := clock.Next()
	second := clock.Next()
	third := clock.Next()

	assert.Equal(t, frozen.Truncate(time.Microsecond), first)
	assert.True(t, second.After(first))
	assert.True(t, third.After(second))
	assert.Equal(t, time.Microsecond, third.Sub(second))
}
