package services

import (
	"github.com/sjperalta/feria-api/internal/config"
	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Audit      *AuditService
	Ledger     *LedgerService
	Settlement *SettlementService
	Purchase   *PurchaseService
	Report     *ReportService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, tx *database.Transactor, cfg *config.Config) *Services {
	auditSvc := NewAuditService(repos.Audit)
	ledgerSvc := NewLedgerService(repos.Purchase, repos.Installment, cfg.StrictScheduleOrder)
	purchaseSvc := NewPurchaseService(tx, repos.Purchase, repos.Installment, auditSvc)

	return &Services{
		Audit:      auditSvc,
		Ledger:     ledgerSvc,
		Settlement: NewSettlementService(tx, ledgerSvc, auditSvc, repos.Purchase, cfg.SystemActorID),
		Purchase:   purchaseSvc,
		Report:     NewReportService(repos.Audit, purchaseSvc),
	}
}
