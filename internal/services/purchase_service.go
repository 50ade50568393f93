package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/models"
	"github.com/sjperalta/feria-api/internal/repository"
	"github.com/sjperalta/feria-api/pkg/logger"
)

// InstallmentPlanItem is one row of a payment plan. Rows are numbered
// 1..n in the order given.
type InstallmentPlanItem struct {
	AmountCents int64
	DueDate     time.Time
}

// RegisterPurchaseInput describes a new purchase and its payment plan
type RegisterPurchaseInput struct {
	ExhibitorID  uint
	FairID       uint
	TotalCents   int64
	Installments []InstallmentPlanItem
}

// PurchaseService registers purchases and serves read views of them
type PurchaseService struct {
	tx           *database.Transactor
	purchases    repository.PurchaseRepository
	installments repository.InstallmentRepository
	audit        *AuditService
	now          func() time.Time
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	tx *database.Transactor,
	purchases repository.PurchaseRepository,
	installments repository.InstallmentRepository,
	audit *AuditService,
) *PurchaseService {
	return &PurchaseService{
		tx:           tx,
		purchases:    purchases,
		installments: installments,
		audit:        audit,
		now:          time.Now,
	}
}

// Register creates an unpaid purchase with its installment plan and audits
// the creation in the same unit of work
func (s *PurchaseService) Register(ctx context.Context, input RegisterPurchaseInput, actorID uint) (*models.Purchase, error) {
	if err := validatePlan(input); err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		ExhibitorID:  input.ExhibitorID,
		FairID:       input.FairID,
		TotalCents:   input.TotalCents,
		Status:       models.PaymentStatusUnpaid,
		Installments: make([]models.Installment, 0, len(input.Installments)),
	}
	for i, item := range input.Installments {
		purchase.Installments = append(purchase.Installments, models.Installment{
			Number:      i + 1,
			AmountCents: item.AmountCents,
			DueDate:     models.TruncateDate(item.DueDate),
		})
	}

	err := s.tx.WithinScope(ctx, func(ctx context.Context, scope database.Scope) error {
		if err := s.purchases.Create(ctx, scope, purchase); err != nil {
			return classifyStoreError("create purchase", err)
		}

		plan := make([]models.InstallmentSnapshot, 0, len(purchase.Installments))
		for i := range purchase.Installments {
			plan = append(plan, purchase.Installments[i].Snapshot())
		}

		_, err := s.audit.Record(ctx, scope, AuditRecord{
			Action:   models.AuditActionPurchaseRegistered,
			Entity:   models.AuditEntityPurchase,
			EntityID: purchase.ID,
			ActorID:  actorID,
			After: map[string]any{
				"purchase":     purchase.Snapshot(),
				"installments": plan,
			},
			Meta: map[string]any{
				"exhibitor_id": purchase.ExhibitorID,
				"fair_id":      purchase.FairID,
			},
		})
		return err
	})
	if err != nil {
		return nil, classifyStoreError("register purchase", err)
	}

	logger.Info("Purchase registered",
		"purchase_id", purchase.ID,
		"exhibitor_id", purchase.ExhibitorID,
		"fair_id", purchase.FairID,
		"total_cents", purchase.TotalCents,
		"installments", len(purchase.Installments),
	)
	return purchase, nil
}

// Get returns a committed purchase with its installments
func (s *PurchaseService) Get(ctx context.Context, id uint) (*models.Purchase, error) {
	purchase, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, classifyStoreError(fmt.Sprintf("find purchase %d", id), err)
	}
	return purchase, nil
}

// CountOverdue counts unpaid installments past due as of now
func (s *PurchaseService) CountOverdue(ctx context.Context) (int64, error) {
	count, err := s.installments.CountOverdue(ctx, s.now())
	if err != nil {
		return 0, classifyStoreError("count overdue installments", err)
	}
	return count, nil
}

func validatePlan(input RegisterPurchaseInput) error {
	if input.ExhibitorID == 0 || input.FairID == 0 {
		return fmt.Errorf("%w: expositor y feria son requeridos", ErrInvalidPlan)
	}
	if input.TotalCents <= 0 {
		return fmt.Errorf("%w: el total debe ser mayor que cero", ErrInvalidPlan)
	}
	if len(input.Installments) == 0 {
		return fmt.Errorf("%w: se requiere al menos una cuota", ErrInvalidPlan)
	}

	var sum int64
	for i, item := range input.Installments {
		if item.AmountCents <= 0 {
			return fmt.Errorf("%w: la cuota #%d debe tener un monto mayor que cero", ErrInvalidPlan, i+1)
		}
		if item.DueDate.IsZero() {
			return fmt.Errorf("%w: la cuota #%d no tiene fecha de vencimiento", ErrInvalidPlan, i+1)
		}
		sum += item.AmountCents
	}
	if sum != input.TotalCents {
		return fmt.Errorf("%w: la suma de cuotas (%d) no coincide con el total (%d)", ErrInvalidPlan, sum, input.TotalCents)
	}
	return nil
}
