package repository

import (
	"context"
	"time"

	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Installment, error)
	CountOverdue(ctx context.Context, asOf time.Time) (int64, error)
	Locate(ctx context.Context, scope database.Scope, id uint) (*models.Installment, error)
	LockByPurchase(ctx context.Context, scope database.Scope, purchaseID uint) ([]models.Installment, error)
	UpdatePayment(ctx context.Context, scope database.Scope, installment *models.Installment) error
	UpdateDueDate(ctx context.Context, scope database.Scope, installment *models.Installment) error
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	var installment models.Installment
	err := r.db.WithContext(ctx).First(&installment, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

// CountOverdue counts unpaid installments due before the calendar day of asOf
func (r *installmentRepository) CountOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("paid_cents < amount_cents AND due_date < ?", models.TruncateDate(asOf)).
		Count(&count).Error
	return count, err
}

// Locate reads an installment inside the scope without locking it. Callers
// use it to find the owning purchase before taking locks in purchase order.
func (r *installmentRepository) Locate(ctx context.Context, scope database.Scope, id uint) (*models.Installment, error) {
	conn, err := scope.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var installment models.Installment
	if err := conn.First(&installment, id).Error; err != nil {
		return nil, err
	}
	return &installment, nil
}

// LockByPurchase reads every installment of a purchase FOR UPDATE, ordered by number
func (r *installmentRepository) LockByPurchase(ctx context.Context, scope database.Scope, purchaseID uint) ([]models.Installment, error) {
	conn, err := scope.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var installments []models.Installment
	err = conn.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("purchase_id = ?", purchaseID).
		Order("number ASC").
		Find(&installments).Error
	return installments, err
}

// UpdatePayment writes the paid amount and paid timestamp
func (r *installmentRepository) UpdatePayment(ctx context.Context, scope database.Scope, installment *models.Installment) error {
	return r.updateColumns(ctx, scope, installment, map[string]interface{}{
		"paid_cents": installment.PaidCents,
		"paid_at":    installment.PaidAt,
		"updated_at": installment.UpdatedAt,
	})
}

// UpdateDueDate writes only the due date
func (r *installmentRepository) UpdateDueDate(ctx context.Context, scope database.Scope, installment *models.Installment) error {
	return r.updateColumns(ctx, scope, installment, map[string]interface{}{
		"due_date":   installment.DueDate,
		"updated_at": installment.UpdatedAt,
	})
}

func (r *installmentRepository) updateColumns(ctx context.Context, scope database.Scope, installment *models.Installment, values map[string]interface{}) error {
	conn, err := scope.Conn(ctx)
	if err != nil {
		return err
	}
	result := conn.Model(installment).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
