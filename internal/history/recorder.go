package history

import (
	"context"
	"fmt"
	"log/slog"

	"snake-backend/internal/core/types"
	"snake-backend/internal/database"

	"github.com/google/uuid"
)

type Outcome string

const (
	Appended     Outcome = "appended"
	UserNotFound Outcome = "user_not_found"
)

type Appender interface {
	AppendPrediction(ctx context.Context, userId uuid.UUID, entry database.HistoryEntry) (database.AppendResult, error)
}

// Recorder appends resolved predictions to the history of authenticated users.
// Each call issues exactly one append and is never retried.
type Recorder struct {
	store Appender
}

func NewRecorder(store Appender) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) Record(ctx context.Context, userId uuid.UUID, prediction types.Prediction) (Outcome, error) {
	res, err := r.store.AppendPrediction(ctx, userId, database.HistoryEntry{
		Snake:     prediction.Label,
		Accuracy:  prediction.Confidence,
		Timestamp: prediction.Timestamp,
	})
	if err != nil {
		slog.Error("error recording prediction", "user_id", userId, "error", err)
		return "", fmt.Errorf("error recording prediction for user %s: %w", userId, err)
	}

	if !res.Matched {
		slog.Warn("prediction not recorded, user does not exist", "user_id", userId)
		return UserNotFound, nil
	}

	return Appended, nil
}
