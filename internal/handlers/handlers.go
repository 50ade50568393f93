package handlers

import (
	"github.com/sjperalta/feria-api/internal/jobs"
	"github.com/sjperalta/feria-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health     *HealthHandler
	Settlement *SettlementHandler
	Purchase   *PurchaseHandler
	Audit      *AuditHandler
	Job        *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, worker *jobs.Worker) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(worker),
		Settlement: NewSettlementHandler(svcs.Settlement),
		Purchase:   NewPurchaseHandler(svcs.Purchase, svcs.Report),
		Audit:      NewAuditHandler(svcs.Audit, svcs.Report),
		Job:        NewJobHandler(worker),
	}
}
