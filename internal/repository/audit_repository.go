package repository

import (
	"context"
	"strconv"

	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/models"

	"gorm.io/gorm"
)

// AuditRepository defines the interface for audit log data access.
// The trail is append-only.
type AuditRepository interface {
	Create(ctx context.Context, scope database.Scope, entry *models.AuditLog) error
	List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error)
	FindAll(ctx context.Context, query *ListQuery) ([]models.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create appends an entry inside the caller's scope
func (r *auditRepository) Create(ctx context.Context, scope database.Scope, entry *models.AuditLog) error {
	conn, err := scope.Conn(ctx)
	if err != nil {
		return err
	}
	return conn.Create(entry).Error
}

// List returns a page of entries, newest first, with the total count
func (r *auditRepository) List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	query.Normalize()
	db := r.filtered(ctx, query)

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC, id DESC").
		Limit(query.PerPage).
		Offset(query.Offset()).
		Find(&logs).Error
	return logs, total, err
}

// FindAll returns every entry matching the filters in commit order
func (r *auditRepository) FindAll(ctx context.Context, query *ListQuery) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query.Normalize()
	err := r.filtered(ctx, query).Order("id ASC").Find(&logs).Error
	return logs, err
}

func (r *auditRepository) filtered(ctx context.Context, query *ListQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if val := query.Filters["action"]; val != "" {
		db = db.Where("action = ?", val)
	}
	if val := query.Filters["entity"]; val != "" {
		db = db.Where("entity = ?", val)
	}
	if id, err := strconv.ParseUint(query.Filters["entity_id"], 10, 64); err == nil && id > 0 {
		db = db.Where("entity_id = ?", id)
	}
	if id, err := strconv.ParseUint(query.Filters["actor_id"], 10, 64); err == nil && id > 0 {
		db = db.Where("actor_id = ?", id)
	}
	return db
}
