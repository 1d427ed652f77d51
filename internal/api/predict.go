package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"snake-backend/internal/auth"
	"snake-backend/internal/core"
	"snake-backend/internal/core/types"
	"snake-backend/internal/history"
	"snake-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	ImageField            = "image"
	DefaultMaxUploadBytes = 10 << 20
)

type Predictor interface {
	Predict(data []byte) (types.Prediction, error)
}

type Recorder interface {
	Record(ctx context.Context, userId uuid.UUID, prediction types.Prediction) (history.Outcome, error)
}

type PredictionService struct {
	predictor      Predictor
	recorder       Recorder
	tokens         *auth.TokenManager
	maxUploadBytes int64
}

func NewPredictionService(predictor Predictor, recorder Recorder, tokens *auth.TokenManager, maxUploadBytes int64) *PredictionService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &PredictionService{
		predictor:      predictor,
		recorder:       recorder,
		tokens:         tokens,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *PredictionService) AddRoutes(r chi.Router) {
	r.With(s.tokens.OptionalIdentity).Post("/predict", RestHandler(s.Predict))
}

// readUpload returns the bytes of the image field. The multipart form is held
// in memory and released before returning.
func (s *PredictionService) readUpload(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, s.maxUploadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, CodedErrorf(http.StatusRequestEntityTooLarge, "image exceeds the upload limit of %d bytes", s.maxUploadBytes)
		}
		return nil, CodedErrorf(http.StatusBadRequest, "unable to read request body: %v", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "no image supplied.")
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Error("error removing multipart form", "error", err)
		}
	}()

	file, _, err := r.FormFile(ImageField)
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "no image supplied.")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "unable to read uploaded image: %v", err)
	}
	return data, nil
}

func (s *PredictionService) Predict(r *http.Request) (any, error) {
	data, err := s.readUpload(r)
	if err != nil {
		return nil, err
	}

	prediction, err := s.predictor.Predict(data)
	if err != nil {
		if errors.Is(err, core.ErrDecode) {
			return nil, CodedError(http.StatusBadRequest, err)
		}
		slog.Error("prediction failed", "error", err)
		return nil, CodedError(http.StatusInternalServerError, fmt.Errorf("prediction failed"))
	}

	if userId, ok := auth.IdentityFromContext(r.Context()).UserId(); ok {
		outcome, err := s.recorder.Record(r.Context(), userId, prediction)
		if err != nil {
			slog.Error("unable to record prediction, returning result anyway", "user_id", userId, "error", err)
		} else if outcome == history.UserNotFound {
			slog.Warn("prediction returned without history entry", "user_id", userId)
		}
	}

	return api.PredictResponse{Snake: prediction.Label, Accuracy: prediction.Confidence}, nil
}
