package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email            string    `gorm:"uniqueIndex;not null"`
	PasswordHash     string    `gorm:"not null"`
	CreationTime     time.Time
	LastPredictionAt sql.NullTime

	Predictions []PredictionRecord `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

// PredictionRecord is one entry of a user's prediction history. The
// auto-increment ID preserves append order.
type PredictionRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserId    uuid.UUID `gorm:"type:uuid;index;not null"`
	Snake     string    `gorm:"not null"`
	Accuracy  float64
	Timestamp time.Time
}

type Snake struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Image       string
	Description string
	Endemism    string `gorm:"index"`
	WikiLink    string
}
