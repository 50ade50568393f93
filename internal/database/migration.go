package database

import (
	"fmt"

	"github.com/sjperalta/feria-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the settlement tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Purchase{},
		&models.Installment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
