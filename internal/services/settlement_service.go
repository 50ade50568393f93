package services

import (
	"context"
	"errors"
	"time"

	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/models"
	"github.com/sjperalta/feria-api/internal/repository"
	"github.com/sjperalta/feria-api/pkg/logger"
)

const reconcileBatchSize = 100

// PaymentActionResult is the outcome of a committed settlement action
type PaymentActionResult struct {
	Success                bool                 `json:"success"`
	InstallmentID          uint                 `json:"installment_id"`
	InstallmentNumber      int                  `json:"installment_number"`
	InstallmentAmountCents int64                `json:"installment_amount_cents"`
	InstallmentPaidCents   int64                `json:"installment_paid_cents"`
	InstallmentPaidAt      *time.Time           `json:"installment_paid_at"`
	InstallmentDueDate     string               `json:"installment_due_date"`
	InstallmentUpdatedAt   time.Time            `json:"installment_updated_at"`
	PurchaseID             uint                 `json:"purchase_id"`
	PurchaseTotalCents     int64                `json:"purchase_total_cents"`
	PurchasePaidCents      int64                `json:"purchase_paid_cents"`
	PurchasePaidAt         *time.Time           `json:"purchase_paid_at"`
	PurchasePaymentStatus  models.PaymentStatus `json:"purchase_payment_status"`
	PurchaseUpdatedAt      time.Time            `json:"purchase_updated_at"`
	AuditLogID             uint                 `json:"audit_log_id"`
}

func newPaymentActionResult(r *SettlementResult, entry *models.AuditLog) *PaymentActionResult {
	return &PaymentActionResult{
		Success:                true,
		InstallmentID:          r.Installment.ID,
		InstallmentNumber:      r.Installment.Number,
		InstallmentAmountCents: r.Installment.AmountCents,
		InstallmentPaidCents:   r.Installment.PaidCents,
		InstallmentPaidAt:      r.Installment.PaidAt,
		InstallmentDueDate:     r.Installment.DueDate.Format(models.DateLayout),
		InstallmentUpdatedAt:   r.Installment.UpdatedAt,
		PurchaseID:             r.Purchase.ID,
		PurchaseTotalCents:     r.Purchase.TotalCents,
		PurchasePaidCents:      r.Purchase.PaidCents,
		PurchasePaidAt:         r.Purchase.PaidAt,
		PurchasePaymentStatus:  r.Purchase.Status,
		PurchaseUpdatedAt:      r.Purchase.UpdatedAt,
		AuditLogID:             entry.ID,
	}
}

// ReconcileReport summarises one reconciliation sweep
type ReconcileReport struct {
	Checked  int           `json:"checked"`
	Repaired int           `json:"repaired"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// SettlementService runs each settlement action as a single unit of work:
// the ledger mutation and its audit entry commit together or not at all.
type SettlementService struct {
	tx            *database.Transactor
	ledger        *LedgerService
	audit         *AuditService
	purchases     repository.PurchaseRepository
	systemActorID uint
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	tx *database.Transactor,
	ledger *LedgerService,
	audit *AuditService,
	purchases repository.PurchaseRepository,
	systemActorID uint,
) *SettlementService {
	return &SettlementService{
		tx:            tx,
		ledger:        ledger,
		audit:         audit,
		purchases:     purchases,
		systemActorID: systemActorID,
	}
}

// RecordPayment applies a payment to an installment and audits it
func (s *SettlementService) RecordPayment(ctx context.Context, installmentID uint, amountCents int64, actorID uint) (*PaymentActionResult, error) {
	var result *PaymentActionResult

	err := s.tx.WithinScope(ctx, func(ctx context.Context, scope database.Scope) error {
		before, err := s.ledger.Snapshot(ctx, scope, installmentID)
		if err != nil {
			return err
		}

		after, err := s.ledger.ApplyPayment(ctx, scope, installmentID, amountCents, actorID)
		if err != nil {
			return err
		}

		entry, err := s.audit.Record(ctx, scope, AuditRecord{
			Action:   models.AuditActionPaymentRecorded,
			Entity:   models.AuditEntityInstallment,
			EntityID: installmentID,
			ActorID:  actorID,
			Before:   before.Snapshot(),
			After:    after.Snapshot(),
			Meta: map[string]any{
				"amount_cents": amountCents,
				"purchase_id":  after.Purchase.ID,
			},
		})
		if err != nil {
			return err
		}

		result = newPaymentActionResult(after, entry)
		return nil
	})
	if err != nil {
		err = classifyStoreError("record payment", err)
		logger.Warn("Payment rejected",
			"installment_id", installmentID,
			"amount_cents", amountCents,
			"actor_id", actorID,
			"error", err,
		)
		return nil, err
	}

	logger.Info("Payment recorded",
		"installment_id", installmentID,
		"purchase_id", result.PurchaseID,
		"amount_cents", amountCents,
		"status", result.PurchasePaymentStatus,
		"audit_log_id", result.AuditLogID,
	)
	return result, nil
}

// Reschedule moves an installment's due date and audits it
func (s *SettlementService) Reschedule(ctx context.Context, installmentID uint, newDueDate time.Time, actorID uint) (*PaymentActionResult, error) {
	var result *PaymentActionResult

	err := s.tx.WithinScope(ctx, func(ctx context.Context, scope database.Scope) error {
		before, err := s.ledger.Snapshot(ctx, scope, installmentID)
		if err != nil {
			return err
		}

		after, err := s.ledger.Reschedule(ctx, scope, installmentID, newDueDate, actorID)
		if err != nil {
			return err
		}

		entry, err := s.audit.Record(ctx, scope, AuditRecord{
			Action:   models.AuditActionInstallmentRescheduled,
			Entity:   models.AuditEntityInstallment,
			EntityID: installmentID,
			ActorID:  actorID,
			Before:   before.Snapshot(),
			After:    after.Snapshot(),
			Meta: map[string]any{
				"previous_due_date": before.Installment.DueDate.Format(models.DateLayout),
				"due_date":          after.Installment.DueDate.Format(models.DateLayout),
			},
		})
		if err != nil {
			return err
		}

		result = newPaymentActionResult(after, entry)
		return nil
	})
	if err != nil {
		err = classifyStoreError("reschedule installment", err)
		logger.Warn("Reschedule rejected",
			"installment_id", installmentID,
			"due_date", newDueDate.Format(models.DateLayout),
			"actor_id", actorID,
			"error", err,
		)
		return nil, err
	}

	logger.Info("Installment rescheduled",
		"installment_id", installmentID,
		"due_date", result.InstallmentDueDate,
		"audit_log_id", result.AuditLogID,
	)
	return result, nil
}

// Reconcile recomputes every purchase aggregate from its installments and
// repairs the ones that drifted. Each purchase is its own unit of work, so
// one failure does not stop the sweep.
func (s *SettlementService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	started := time.Now()
	report := &ReconcileReport{}

	var afterID uint
	for {
		if err := ctx.Err(); err != nil {
			return report, classifyStoreError("reconcile", err)
		}

		ids, err := s.purchases.FindIDs(ctx, afterID, reconcileBatchSize)
		if err != nil {
			return report, classifyStoreError("list purchases", err)
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			report.Checked++
			repaired, err := s.reconcileOne(ctx, id)
			if err != nil {
				report.Failed++
				logger.Error("Reconcile failed", "purchase_id", id, "error", err)
				if errors.Is(err, context.Canceled) {
					return report, classifyStoreError("reconcile", err)
				}
				continue
			}
			if repaired {
				report.Repaired++
			}
		}
		afterID = ids[len(ids)-1]
	}

	report.Duration = time.Since(started)
	logger.Info("Reconcile finished",
		"checked", report.Checked,
		"repaired", report.Repaired,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

func (s *SettlementService) reconcileOne(ctx context.Context, purchaseID uint) (bool, error) {
	var repaired bool
	err := s.tx.WithinScope(ctx, func(ctx context.Context, scope database.Scope) error {
		before, after, changed, err := s.ledger.Recompute(ctx, scope, purchaseID)
		if err != nil || !changed {
			return err
		}

		meta := map[string]any{"reason": "aggregate drift"}
		if ids := repairedInstallments(before, after); len(ids) > 0 {
			meta["installments_repaired"] = ids
		}

		_, err = s.audit.Record(ctx, scope, AuditRecord{
			Action:   models.AuditActionPurchaseReconciled,
			Entity:   models.AuditEntityPurchase,
			EntityID: purchaseID,
			ActorID:  s.systemActorID,
			Before:   before.Snapshot(),
			After:    after.Snapshot(),
			Meta:     meta,
		})
		if err != nil {
			return err
		}

		logger.Warn("Purchase aggregate repaired",
			"purchase_id", purchaseID,
			"paid_cents_before", before.PaidCents,
			"paid_cents_after", after.PaidCents,
			"status_before", before.Status,
			"status_after", after.Status,
		)
		repaired = true
		return nil
	})
	if err != nil {
		return false, classifyStoreError("reconcile purchase", err)
	}
	return repaired, nil
}
