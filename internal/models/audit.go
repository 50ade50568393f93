package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditAction is the closed set of audited state changes
type AuditAction string

const (
	AuditActionPaymentRecorded        AuditAction = "PAYMENT_RECORDED"
	AuditActionInstallmentRescheduled AuditAction = "INSTALLMENT_RESCHEDULED"
	AuditActionPurchaseRegistered     AuditAction = "PURCHASE_REGISTERED"
	AuditActionPurchaseReconciled     AuditAction = "PURCHASE_RECONCILED"
)

// Valid reports whether a is a known action
func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionPaymentRecorded,
		AuditActionInstallmentRescheduled,
		AuditActionPurchaseRegistered,
		AuditActionPurchaseReconciled:
		return true
	default:
		return false
	}
}

// AuditEntity identifies the kind of entity an audit entry points at
type AuditEntity string

const (
	AuditEntityPurchase    AuditEntity = "Purchase"
	AuditEntityInstallment AuditEntity = "Installment"
)

// Valid reports whether e is a known entity kind
func (e AuditEntity) Valid() bool {
	switch e {
	case AuditEntityPurchase, AuditEntityInstallment:
		return true
	default:
		return false
	}
}

// AuditLog is an append-only record of one committed state change.
// Before, After and Metadata are NULL when absent.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	EventID   string         `gorm:"size:36;not null;uniqueIndex" json:"event_id"`
	Action    AuditAction    `gorm:"size:50;not null;index" json:"action"`
	Entity    AuditEntity    `gorm:"size:50;not null;index:idx_audit_logs_entity,priority:1" json:"entity"`
	EntityID  uint           `gorm:"not null;index:idx_audit_logs_entity,priority:2" json:"entity_id"`
	ActorID   uint           `gorm:"not null;index" json:"actor_id"`
	Before    datatypes.JSON `gorm:"column:before_state" json:"before"`
	After     datatypes.JSON `gorm:"column:after_state" json:"after"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
