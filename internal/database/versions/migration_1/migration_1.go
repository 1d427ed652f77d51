package migration_1

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Snake struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Image       string
	Description string
	Endemism    string `gorm:"index"`
	WikiLink    string
}

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&Snake{}); err != nil {
		return fmt.Errorf("Migration1 failed: %w", err)
	}
	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&Snake{}); err != nil {
		return fmt.Errorf("Rollback1 failed: %w", err)
	}
	return nil
}
