package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Purchase    PurchaseRepository
	Installment InstallmentRepository
	Audit       AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Purchase:    NewPurchaseRepository(db),
		Installment: NewInstallmentRepository(db),
		Audit:       NewAuditRepository(db),
	}
}
