package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/models"
	"github.com/sjperalta/feria-api/internal/repository"
	"github.com/sjperalta/feria-api/internal/statemachine"
	"github.com/sjperalta/feria-api/pkg/logger"
)

// SettlementResult is an installment together with its owning purchase
type SettlementResult struct {
	Installment models.Installment
	Purchase    models.Purchase
}

// SettlementSnapshot is the audited before/after shape of a SettlementResult
type SettlementSnapshot struct {
	Installment models.InstallmentSnapshot `json:"installment"`
	Purchase    models.PurchaseSnapshot    `json:"purchase"`
}

// Snapshot captures the audited fields of both rows
func (r *SettlementResult) Snapshot() SettlementSnapshot {
	return SettlementSnapshot{
		Installment: r.Installment.Snapshot(),
		Purchase:    r.Purchase.Snapshot(),
	}
}

// LedgerService mutates installments and keeps the purchase aggregate in
// step with them. Every method runs inside a caller-provided scope and
// locks the purchase row first, then its installments in number order.
type LedgerService struct {
	purchases           repository.PurchaseRepository
	installments        repository.InstallmentRepository
	strictScheduleOrder bool
	now                 func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	purchases repository.PurchaseRepository,
	installments repository.InstallmentRepository,
	strictScheduleOrder bool,
) *LedgerService {
	return &LedgerService{
		purchases:           purchases,
		installments:        installments,
		strictScheduleOrder: strictScheduleOrder,
		now:                 time.Now,
	}
}

// position is a locked purchase with all of its installments
type position struct {
	purchase     *models.Purchase
	installments []models.Installment
	index        int
}

func (p *position) target() *models.Installment {
	return &p.installments[p.index]
}

func (p *position) result() *SettlementResult {
	return &SettlementResult{
		Installment: *p.target(),
		Purchase:    *p.purchase,
	}
}

func (s *LedgerService) lock(ctx context.Context, scope database.Scope, installmentID uint) (*position, error) {
	inst, err := s.installments.Locate(ctx, scope, installmentID)
	if err != nil {
		return nil, classifyStoreError(fmt.Sprintf("locate installment %d", installmentID), err)
	}

	purchase, err := s.purchases.LockByID(ctx, scope, inst.PurchaseID)
	if err != nil {
		return nil, classifyStoreError(fmt.Sprintf("lock purchase %d", inst.PurchaseID), err)
	}

	siblings, err := s.installments.LockByPurchase(ctx, scope, purchase.ID)
	if err != nil {
		return nil, classifyStoreError(fmt.Sprintf("lock installments of purchase %d", purchase.ID), err)
	}

	for i := range siblings {
		if siblings[i].ID == installmentID {
			return &position{purchase: purchase, installments: siblings, index: i}, nil
		}
	}
	return nil, fmt.Errorf("%w: installment %d", ErrNotFound, installmentID)
}

// Snapshot reads the installment and its purchase under lock without
// changing anything
func (s *LedgerService) Snapshot(ctx context.Context, scope database.Scope, installmentID uint) (*SettlementResult, error) {
	pos, err := s.lock(ctx, scope, installmentID)
	if err != nil {
		return nil, err
	}
	return pos.result(), nil
}

// ApplyPayment adds amountCents to the installment and recomputes the
// purchase aggregate from all of its installments
func (s *LedgerService) ApplyPayment(ctx context.Context, scope database.Scope, installmentID uint, amountCents int64, actorID uint) (*SettlementResult, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: recibido %d", ErrInvalidAmount, amountCents)
	}

	pos, err := s.lock(ctx, scope, installmentID)
	if err != nil {
		return nil, err
	}

	inst := pos.target()
	if amountCents > inst.RemainingCents() {
		return nil, fmt.Errorf("%w: cuota #%d, pendiente %d, recibido %d",
			ErrOverpayment, inst.Number, inst.RemainingCents(), amountCents)
	}

	now := s.now().UTC()
	inst.PaidCents += amountCents
	if inst.IsPaid() {
		inst.PaidAt = &now
	}
	inst.UpdatedAt = now

	if err := s.installments.UpdatePayment(ctx, scope, inst); err != nil {
		return nil, classifyStoreError(fmt.Sprintf("update installment %d", inst.ID), err)
	}

	if err := s.aggregate(ctx, pos.purchase, pos.installments, now, true); err != nil {
		return nil, err
	}
	if err := s.purchases.UpdateAggregate(ctx, scope, pos.purchase); err != nil {
		return nil, classifyStoreError(fmt.Sprintf("update purchase %d", pos.purchase.ID), err)
	}

	logger.Debug("Payment applied",
		"installment_id", inst.ID,
		"purchase_id", pos.purchase.ID,
		"amount_cents", amountCents,
		"actor_id", actorID,
		"status", pos.purchase.Status,
	)
	return pos.result(), nil
}

// Reschedule moves the installment due date. Amounts and the purchase
// aggregate are untouched.
func (s *LedgerService) Reschedule(ctx context.Context, scope database.Scope, installmentID uint, newDueDate time.Time, actorID uint) (*SettlementResult, error) {
	if newDueDate.IsZero() {
		return nil, fmt.Errorf("%w: fecha vacía", ErrInvalidSchedule)
	}

	pos, err := s.lock(ctx, scope, installmentID)
	if err != nil {
		return nil, err
	}

	due := models.TruncateDate(newDueDate)
	if s.strictScheduleOrder {
		if err := checkScheduleOrder(pos, due); err != nil {
			return nil, err
		}
	}

	inst := pos.target()
	inst.DueDate = due
	inst.UpdatedAt = s.now().UTC()

	if err := s.installments.UpdateDueDate(ctx, scope, inst); err != nil {
		return nil, classifyStoreError(fmt.Sprintf("update installment %d", inst.ID), err)
	}

	logger.Debug("Installment rescheduled",
		"installment_id", inst.ID,
		"due_date", due.Format(models.DateLayout),
		"actor_id", actorID,
	)
	return pos.result(), nil
}

// Recompute rebuilds the purchase aggregate and each installment's paid_at
// from the installment amounts and writes back whatever had drifted. Both
// returned purchases carry their installments. Drift that cannot be derived
// away (an installment paid beyond its amount, broken numbering) is a conflict.
func (s *LedgerService) Recompute(ctx context.Context, scope database.Scope, purchaseID uint) (before, after models.Purchase, changed bool, err error) {
	purchase, err := s.purchases.LockByID(ctx, scope, purchaseID)
	if err != nil {
		return before, after, false, classifyStoreError(fmt.Sprintf("lock purchase %d", purchaseID), err)
	}
	installments, err := s.installments.LockByPurchase(ctx, scope, purchaseID)
	if err != nil {
		return before, after, false, classifyStoreError(fmt.Sprintf("lock installments of purchase %d", purchaseID), err)
	}

	before = *purchase
	before.PaidAt = copyTimePtr(purchase.PaidAt)
	before.Installments = make([]models.Installment, len(installments))
	for i := range installments {
		before.Installments[i] = installments[i]
		before.Installments[i].PaidAt = copyTimePtr(installments[i].PaidAt)
	}

	now := s.now().UTC()
	for i := range installments {
		inst := &installments[i]
		switch {
		case inst.IsPaid() && inst.PaidAt == nil:
			inst.PaidAt = &now
		case !inst.IsPaid() && inst.PaidAt != nil:
			inst.PaidAt = nil
		default:
			continue
		}
		inst.UpdatedAt = now
		if err := s.installments.UpdatePayment(ctx, scope, inst); err != nil {
			return before, after, false, classifyStoreError(fmt.Sprintf("update installment %d", inst.ID), err)
		}
		changed = true
	}

	if err := s.aggregate(ctx, purchase, installments, now, false); err != nil {
		return before, after, false, err
	}

	purchase.Installments = installments
	if err := purchase.Verify(); err != nil {
		return before, after, false, fmt.Errorf("%w: purchase %d: %w", ErrConflict, purchaseID, err)
	}

	if !changed &&
		before.PaidCents == purchase.PaidCents &&
		before.Status == purchase.Status &&
		(before.PaidAt == nil) == (purchase.PaidAt == nil) {
		return before, before, false, nil
	}

	if err := s.purchases.UpdateAggregate(ctx, scope, purchase); err != nil {
		return before, after, false, classifyStoreError(fmt.Sprintf("update purchase %d", purchaseID), err)
	}
	return before, *purchase, true, nil
}

// repairedInstallments lists the installments whose paid_at differs
// between two results of Recompute
func repairedInstallments(before, after models.Purchase) []uint {
	var ids []uint
	for i := range after.Installments {
		if i < len(before.Installments) && (before.Installments[i].PaidAt == nil) != (after.Installments[i].PaidAt == nil) {
			ids = append(ids, after.Installments[i].ID)
		}
	}
	return ids
}

// aggregate sets paid, status and paid_at on purchase from installments.
// When guarded the status change must be one a payment can cause.
func (s *LedgerService) aggregate(ctx context.Context, purchase *models.Purchase, installments []models.Installment, now time.Time, guarded bool) error {
	var paid int64
	for i := range installments {
		paid += installments[i].PaidCents
	}

	status, err := models.DerivePaymentStatus(paid, purchase.TotalCents)
	if err != nil {
		return fmt.Errorf("%w: purchase %d: %w", ErrConflict, purchase.ID, err)
	}

	if guarded {
		if err := statemachine.NewPurchaseFSM(purchase).Advance(ctx, status); err != nil {
			return classifyStoreError(fmt.Sprintf("advance purchase %d", purchase.ID), err)
		}
	} else {
		purchase.Status = status
	}

	purchase.PaidCents = paid
	if paid == purchase.TotalCents {
		if purchase.PaidAt == nil {
			purchase.PaidAt = &now
		}
	} else {
		purchase.PaidAt = nil
	}
	purchase.UpdatedAt = now
	return nil
}

func checkScheduleOrder(pos *position, due time.Time) error {
	inst := pos.target()
	if pos.index > 0 {
		prev := pos.installments[pos.index-1]
		if due.Before(models.TruncateDate(prev.DueDate)) {
			return fmt.Errorf("%w: cuota #%d no puede vencer antes que la cuota #%d (%s)",
				ErrInvalidSchedule, inst.Number, prev.Number, prev.DueDate.Format(models.DateLayout))
		}
	}
	if pos.index < len(pos.installments)-1 {
		next := pos.installments[pos.index+1]
		if due.After(models.TruncateDate(next.DueDate)) {
			return fmt.Errorf("%w: cuota #%d no puede vencer después que la cuota #%d (%s)",
				ErrInvalidSchedule, inst.Number, next.Number, next.DueDate.Format(models.DateLayout))
		}
	}
	return nil
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
