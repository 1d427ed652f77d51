package api_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"net/http"
	"testing"
	"time"

	backend "snake-backend/internal/api"
	"snake-backend/internal/core"
	"snake-backend/internal/core/types"
	"snake-backend/internal/database"
	"snake-backend/internal/history"
	"snake-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPredictRouter(t *testing.T, db *gorm.DB, classifier *mockClassifier, recorder backend.Recorder) *chi.Mux {
	meta := core.ModelMetadata{ImageSize: 8}.WithDefaults()
	normalizer, err := core.NewNormalizer(meta)
	require.NoError(t, err)

	labels, err := core.NewLabelSet(meta.Classes)
	require.NoError(t, err)

	predictor, err := core.NewPredictor(normalizer, classifier, labels)
	require.NoError(t, err)

	if recorder == nil {
		recorder = history.NewRecorder(database.NewHistoryStore(db))
	}

	router := chi.NewRouter()
	backend.NewPredictionService(predictor, recorder, createTokens(t), 1<<20).AddRoutes(router)
	return router
}

func postImage(t *testing.T, router http.Handler, data []byte, token string) (int, []byte) {
	body, contentType := multipartImage(t, backend.ImageField, data)
	headers := map[string]string{"Content-Type": contentType}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	rec := doRequest(router, http.MethodPost, "/predict", body, headers)
	return rec.Code, rec.Body.Bytes()
}

var pythonOutput = []float32{0.01, 0.02, 0.03, 0.87654, 0.04, 0.02, 0.01}

func TestPredictAnonymous(t *testing.T) {
	db := createDB(t)
	classifier := &mockClassifier{output: pythonOutput}
	router := newPredictRouter(t, db, classifier, nil)

	code, body := postImage(t, router, encodeTestImage(t), "")
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"snake": "Python", "accuracy": 87.65}`, string(body))
	assert.Equal(t, 1, classifier.calls)

	var count int64
	require.NoError(t, db.Model(&database.PredictionRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPredictAuthenticated(t *testing.T) {
	userId := uuid.New()
	db := createDB(t, &database.User{Id: userId, Email: "a@example.com", PasswordHash: "x"})
	classifier := &mockClassifier{output: pythonOutput}
	router := newPredictRouter(t, db, classifier, nil)

	token, err := createTokens(t).Issue(userId)
	require.NoError(t, err)

	code, body := postImage(t, router, encodeTestImage(t), token)
	require.Equal(t, http.StatusOK, code, string(body))

	records, err := database.NewHistoryStore(db).ListPredictions(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Python", records[0].Snake)
	assert.Equal(t, 87.65, records[0].Accuracy)
}

func TestPredictInvalidTokenIsAnonymous(t *testing.T) {
	db := createDB(t)
	router := newPredictRouter(t, db, &mockClassifier{output: pythonOutput}, nil)

	code, body := postImage(t, router, encodeTestImage(t), "not-a-token")
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"snake": "Python", "accuracy": 87.65}`, string(body))
}

func TestPredictMissingUser(t *testing.T) {
	db := createDB(t)
	router := newPredictRouter(t, db, &mockClassifier{output: pythonOutput}, nil)

	token, err := createTokens(t).Issue(uuid.New())
	require.NoError(t, err)

	code, body := postImage(t, router, encodeTestImage(t), token)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.JSONEq(t, `{"snake": "Python", "accuracy": 87.65}`, string(body))
}

type failingRecorder struct {
	calls int
}

func (f *failingRecorder) Record(ctx context.Context, userId uuid.UUID, prediction types.Prediction) (history.Outcome, error) {
	f.calls++
	return "", errors.New("store unavailable")
}

func TestPredictRecordingFailureIsSwallowed(t *testing.T) {
	recorder := &failingRecorder{}
	router := newPredictRouter(t, createDB(t), &mockClassifier{output: pythonOutput}, recorder)

	token, err := createTokens(t).Issue(uuid.New())
	require.NoError(t, err)

	code, body := postImage(t, router, encodeTestImage(t), token)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, 1, recorder.calls)
}

func TestPredictMissingImage(t *testing.T) {
	classifier := &mockClassifier{output: pythonOutput}
	router := newPredictRouter(t, createDB(t), classifier, nil)

	t.Run("WrongField", func(t *testing.T) {
		body, contentType := multipartImage(t, "file", encodeTestImage(t))
		rec := doRequest(router, http.MethodPost, "/predict", body, map[string]string{"Content-Type": contentType})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, api.ErrorResponse{Error: "no image supplied."}, decode[api.ErrorResponse](t, rec))
	})

	t.Run("NotMultipart", func(t *testing.T) {
		rec := doRequest(router, http.MethodPost, "/predict", bytes.NewReader([]byte(`{}`)), map[string]string{"Content-Type": "application/json"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, api.ErrorResponse{Error: "no image supplied."}, decode[api.ErrorResponse](t, rec))
	})

	assert.Zero(t, classifier.calls)
}

func TestPredictUndecodableImage(t *testing.T) {
	classifier := &mockClassifier{output: pythonOutput}
	router := newPredictRouter(t, createDB(t), classifier, nil)

	code, body := postImage(t, router, []byte("this is not an image"), "")
	assert.Equal(t, http.StatusBadRequest, code, string(body))
	assert.JSONEq(t, `{"error": "unable to decode image: image: unknown format"}`, string(body))
	assert.Zero(t, classifier.calls)
}

func TestPredictOversizedImage(t *testing.T) {
	classifier := &mockClassifier{output: pythonOutput}
	router := newPredictRouter(t, createDB(t), classifier, nil)

	// Rewrite the PNG header so it claims 8000x8000 pixels.
	data := encodeTestImage(t)
	binary.BigEndian.PutUint32(data[16:20], 8000)
	binary.BigEndian.PutUint32(data[20:24], 8000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	code, body := postImage(t, router, data, "")
	assert.Equal(t, http.StatusBadRequest, code, string(body))

	var res api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Contains(t, res.Error, "8000x8000")
	assert.Zero(t, classifier.calls)
}

func TestPredictInferenceFailure(t *testing.T) {
	userId := uuid.New()
	db := createDB(t, &database.User{Id: userId, Email: "a@example.com", PasswordHash: "x"})
	router := newPredictRouter(t, db, &mockClassifier{err: errors.New("session run error")}, nil)

	token, err := createTokens(t).Issue(userId)
	require.NoError(t, err)

	code, body := postImage(t, router, encodeTestImage(t), token)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.JSONEq(t, `{"error": "prediction failed"}`, string(body))

	var count int64
	require.NoError(t, db.Model(&database.PredictionRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPredictUploadTooLarge(t *testing.T) {
	meta := core.ModelMetadata{ImageSize: 8}.WithDefaults()
	normalizer, err := core.NewNormalizer(meta)
	require.NoError(t, err)
	labels, err := core.NewLabelSet(meta.Classes)
	require.NoError(t, err)
	classifier := &mockClassifier{output: pythonOutput}
	predictor, err := core.NewPredictor(normalizer, classifier, labels)
	require.NoError(t, err)

	router := chi.NewRouter()
	backend.NewPredictionService(predictor, &failingRecorder{}, createTokens(t), 64).AddRoutes(router)

	code, _ := postImage(t, router, bytes.Repeat([]byte{0xff}, 4096), "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Zero(t, classifier.calls)
}

func TestPredictTimestampIsRecent(t *testing.T) {
	userId := uuid.New()
	db := createDB(t, &database.User{Id: userId, Email: "a@example.com", PasswordHash: "x"})
	router := newPredictRouter(t, db, &mockClassifier{output: pythonOutput}, nil)

	token, err := createTokens(t).Issue(userId)
	require.NoError(t, err)

	before := time.Now().Add(-time.Second)
	code, _ := postImage(t, router, encodeTestImage(t), token)
	require.Equal(t, http.StatusOK, code)

	records, err := database.NewHistoryStore(db).ListPredictions(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Timestamp.After(before))
}
