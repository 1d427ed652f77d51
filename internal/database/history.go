package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type HistoryEntry struct {
	Snake     string
	Accuracy  float64
	Timestamp time.Time
}

// AppendResult reports whether the target user existed and whether a history
// entry was written.
type AppendResult struct {
	Matched  bool
	Modified bool
}

type HistoryStore struct {
	db *gorm.DB
}

func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) FindUser(ctx context.Context, userId uuid.UUID) (User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("error loading user %s: %w", userId, err)
	}
	return user, nil
}

// AppendPrediction adds an entry to the end of the user's history. The user
// row is touched and the entry inserted in one transaction, so an entry is
// never written for a user that does not exist.
func (s *HistoryStore) AppendPrediction(ctx context.Context, userId uuid.UUID, entry HistoryEntry) (AppendResult, error) {
	var result AppendResult

	err := s.db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		update := txn.Model(&User{}).Where("id = ?", userId).Update("last_prediction_at", entry.Timestamp)
		if update.Error != nil {
			return fmt.Errorf("error updating user %s: %w", userId, update.Error)
		}
		if update.RowsAffected == 0 {
			return ErrUserNotFound
		}
		result.Matched = true

		record := PredictionRecord{
			UserId:    userId,
			Snake:     entry.Snake,
			Accuracy:  entry.Accuracy,
			Timestamp: entry.Timestamp,
		}
		if err := txn.Create(&record).Error; err != nil {
			return fmt.Errorf("error saving prediction for user %s: %w", userId, err)
		}
		result.Modified = true

		return nil
	})

	if errors.Is(err, ErrUserNotFound) {
		return AppendResult{}, nil
	}
	if err != nil {
		return AppendResult{}, err
	}

	return result, nil
}

func (s *HistoryStore) ListPredictions(ctx context.Context, userId uuid.UUID) ([]PredictionRecord, error) {
	if _, err := s.FindUser(ctx, userId); err != nil {
		return nil, err
	}

	var records []PredictionRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", userId).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("error listing predictions for user %s: %w", userId, err)
	}
	return records, nil
}
