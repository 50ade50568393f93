package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/models"
	"github.com/sjperalta/feria-api/internal/repository"
	"github.com/sjperalta/feria-api/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testActorID uint = 42
	systemActor uint = 1
	testExhibit uint = 7
	testFair    uint = 3
)

const testTimeout = 30 * time.Second

var (
	fixedNow    = time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)
	firstDueDay = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
)

// testEnv wires every settlement service against a throwaway SQLite file
type testEnv struct {
	db         *gorm.DB
	repos      *repository.Repositories
	tx         *database.Transactor
	audit      *AuditService
	ledger     *LedgerService
	settlement *SettlementService
	purchases  *PurchaseService
	reports    *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, nil, false)
}

// newTestEnvWith lets a test swap the audit repository for a double
func newTestEnvWith(t *testing.T, auditRepo repository.AuditRepository, strictOrder bool) *testEnv {
	t.Helper()
	logger.Discard()

	db, err := database.Connect(database.Options{
		Driver:      database.DriverSQLite,
		URL:         filepath.Join(t.TempDir(), "settlement.db"),
		Environment: "test",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	repos := repository.NewRepositories(db)
	if auditRepo == nil {
		auditRepo = repos.Audit
	}

	tx := database.NewTransactor(db, testTimeout)
	audit := NewAuditService(auditRepo)
	ledger := NewLedgerService(repos.Purchase, repos.Installment, strictOrder)
	ledger.now = func() time.Time { return fixedNow }
	purchases := NewPurchaseService(tx, repos.Purchase, repos.Installment, NewAuditService(repos.Audit))
	purchases.now = func() time.Time { return fixedNow }
	reports := NewReportService(repos.Audit, purchases)
	reports.now = func() time.Time { return fixedNow }

	return &testEnv{
		db:         db,
		repos:      repos,
		tx:         tx,
		audit:      audit,
		ledger:     ledger,
		settlement: NewSettlementService(tx, ledger, audit, repos.Purchase, systemActor),
		purchases:  purchases,
		reports:    reports,
	}
}

// seedPurchase registers a purchase whose installments fall due monthly
// starting at firstDueDay
func (e *testEnv) seedPurchase(t *testing.T, amounts ...int64) *models.Purchase {
	t.Helper()

	input := RegisterPurchaseInput{ExhibitorID: testExhibit, FairID: testFair}
	for i, amount := range amounts {
		input.TotalCents += amount
		input.Installments = append(input.Installments, InstallmentPlanItem{
			AmountCents: amount,
			DueDate:     firstDueDay.AddDate(0, i, 0),
		})
	}

	purchase, err := e.purchases.Register(context.Background(), input, testActorID)
	require.NoError(t, err)
	require.Len(t, purchase.Installments, len(amounts))
	return purchase
}

func (e *testEnv) loadPurchase(t *testing.T, id uint) *models.Purchase {
	t.Helper()
	purchase, err := e.repos.Purchase.FindByID(context.Background(), id)
	require.NoError(t, err)
	return purchase
}

func (e *testEnv) auditCount(t *testing.T, action models.AuditAction) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

// failingAuditRepo rejects every insert, forcing the enclosing scope to roll back
type failingAuditRepo struct {
	repository.AuditRepository
}

var errAuditStoreDown = errors.New("audit store unavailable")

func (failingAuditRepo) Create(ctx context.Context, scope database.Scope, entry *models.AuditLog) error {
	return errAuditStoreDown
}
