package repository

import (
	"context"

	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseRepository defines the interface for purchase data access.
// Methods taking a Scope read and write inside that unit of work.
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Purchase, error)
	FindIDs(ctx context.Context, afterID uint, limit int) ([]uint, error)
	LockByID(ctx context.Context, scope database.Scope, id uint) (*models.Purchase, error)
	Create(ctx context.Context, scope database.Scope, purchase *models.Purchase) error
	UpdateAggregate(ctx context.Context, scope database.Scope, purchase *models.Purchase) error
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// FindByID loads a committed purchase with its installments in payment order
func (r *purchaseRepository) FindByID(ctx context.Context, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		First(&purchase, id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// FindIDs pages through purchase ids in ascending order (keyset pagination)
func (r *purchaseRepository) FindIDs(ctx context.Context, afterID uint, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// LockByID reads the purchase row FOR UPDATE
func (r *purchaseRepository) LockByID(ctx context.Context, scope database.Scope, id uint) (*models.Purchase, error) {
	conn, err := scope.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var purchase models.Purchase
	err = conn.Clauses(clause.Locking{Strength: "UPDATE"}).First(&purchase, id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Create inserts the purchase together with its installments
func (r *purchaseRepository) Create(ctx context.Context, scope database.Scope, purchase *models.Purchase) error {
	conn, err := scope.Conn(ctx)
	if err != nil {
		return err
	}
	return conn.Create(purchase).Error
}

// UpdateAggregate writes only the derived aggregate columns
func (r *purchaseRepository) UpdateAggregate(ctx context.Context, scope database.Scope, purchase *models.Purchase) error {
	conn, err := scope.Conn(ctx)
	if err != nil {
		return err
	}
	result := conn.Model(purchase).
		Updates(map[string]interface{}{
			"paid_cents": purchase.PaidCents,
			"paid_at":    purchase.PaidAt,
			"status":     purchase.Status,
			"updated_at": purchase.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
