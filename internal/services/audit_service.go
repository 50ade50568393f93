package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/models"
	"github.com/sjperalta/feria-api/internal/repository"
	"gorm.io/datatypes"
)

// AuditRecord describes one state change to be written to the trail.
// Before, After and Meta are marshalled to JSON; nil is stored as NULL.
type AuditRecord struct {
	Action   models.AuditAction
	Entity   models.AuditEntity
	EntityID uint
	ActorID  uint
	Before   any
	After    any
	Meta     any
}

// AuditService appends entries to the audit trail. It never opens a
// transaction: every write joins the caller's scope, so an entry exists
// exactly when the change it describes was committed.
type AuditService struct {
	repo  repository.AuditRepository
	clock *monotonicClock
}

// NewAuditService creates a new audit service
func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{
		repo:  repo,
		clock: &monotonicClock{now: time.Now},
	}
}

// Record writes one entry inside scope
func (s *AuditService) Record(ctx context.Context, scope database.Scope, rec AuditRecord) (*models.AuditLog, error) {
	if !scope.Open() {
		return nil, fmt.Errorf("%w: record audit: %w", ErrPersistence, database.ErrNoScope)
	}
	if err := rec.validate(); err != nil {
		return nil, fmt.Errorf("%w: record audit: %w", ErrPersistence, err)
	}

	before, err := marshalSnapshot(rec.Before)
	if err != nil {
		return nil, fmt.Errorf("%w: encode before: %w", ErrPersistence, err)
	}
	after, err := marshalSnapshot(rec.After)
	if err != nil {
		return nil, fmt.Errorf("%w: encode after: %w", ErrPersistence, err)
	}
	meta, err := marshalSnapshot(rec.Meta)
	if err != nil {
		return nil, fmt.Errorf("%w: encode metadata: %w", ErrPersistence, err)
	}

	entry := &models.AuditLog{
		EventID:   uuid.NewString(),
		Action:    rec.Action,
		Entity:    rec.Entity,
		EntityID:  rec.EntityID,
		ActorID:   rec.ActorID,
		Before:    before,
		After:     after,
		Metadata:  meta,
		CreatedAt: s.clock.Next(),
	}

	if err := s.repo.Create(ctx, scope, entry); err != nil {
		return nil, classifyStoreError("insert audit log", err)
	}
	return entry, nil
}

// List returns a page of committed entries, newest first
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	logs, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, classifyStoreError("list audit logs", err)
	}
	return logs, total, nil
}

func (r AuditRecord) validate() error {
	switch {
	case !r.Action.Valid():
		return fmt.Errorf("unknown audit action %q", r.Action)
	case !r.Entity.Valid():
		return fmt.Errorf("unknown audit entity %q", r.Entity)
	case r.EntityID == 0:
		return fmt.Errorf("audit entry for %s has no entity id", r.Entity)
	case r.ActorID == 0:
		return fmt.Errorf("audit entry for %s %d has no actor", r.Entity, r.EntityID)
	}
	return nil
}

func marshalSnapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return nil, nil
	}
	return datatypes.JSON(raw), nil
}

// monotonicClock hands out strictly increasing timestamps at microsecond
// precision, the finest resolution Postgres keeps.
type monotonicClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func (c *monotonicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
