package migration_0

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email            string    `gorm:"uniqueIndex;not null"`
	PasswordHash     string    `gorm:"not null"`
	CreationTime     time.Time
	LastPredictionAt sql.NullTime

	Predictions []PredictionRecord `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

type PredictionRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserId    uuid.UUID `gorm:"type:uuid;index;not null"`
	Snake     string    `gorm:"not null"`
	Accuracy  float64
	Timestamp time.Time
}

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &PredictionRecord{}); err != nil {
		return fmt.Errorf("initial migration failed: %w", err)
	}
	return nil
}
