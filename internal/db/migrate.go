package db

import (
	"fmt"

	"github.com/zulandar/textline/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.ServiceState{},
		&models.BlockedNumber{},
		&models.Interaction{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// Reset drops and recreates all tables. Destructive; intended for
// development and tests.
func Reset(gdb *gorm.DB) error {
	if err := gdb.Migrator().DropTable(AllModels()...); err != nil {
		return fmt.Errorf("db: drop tables: %w", err)
	}
	return AutoMigrate(gdb)
}
