package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	backend "snake-backend/internal/api"
	"snake-backend/internal/auth"
	"snake-backend/internal/core"
	"snake-backend/internal/database"
	"snake-backend/internal/history"
	"snake-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createRouter(t *testing.T, db *gorm.DB, tokens *auth.TokenManager) http.Handler {
	meta := core.ModelMetadata{ImageSize: 32}.WithDefaults()

	normalizer, err := core.NewNormalizer(meta)
	require.NoError(t, err)

	labels, err := core.NewLabelSet(meta.Classes)
	require.NoError(t, err)

	classifier := &fixedClassifier{
		shape:  []int64{1, 32, 32, 3},
		output: []float32{0.02, 0.9, 0.02, 0.02, 0.02, 0.01, 0.01},
	}

	predictor, err := core.NewPredictor(normalizer, classifier, labels)
	require.NoError(t, err)

	router := chi.NewRouter()
	backend.AddServiceRoutes(router)
	backend.NewPredictionService(predictor, history.NewRecorder(database.NewHistoryStore(db)), tokens, 1<<20).AddRoutes(router)
	backend.NewAccountService(db, tokens).AddRoutes(router)
	backend.NewCatalogService(db).AddRoutes(router)
	return router
}

func predict(t *testing.T, router http.Handler, image []byte, token string) (int, api.PredictResponse) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(backend.ImageField, "snake.jpg")
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/predict", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var res api.PredictResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	}
	return rec.Code, res
}

func TestPredictionFlowPostgres(t *testing.T) {
	db := createDB(t)
	tokens, err := auth.NewTokenManager("integration-secret", time.Hour)
	require.NoError(t, err)
	router := createRouter(t, db, tokens)

	creds := api.CredentialsRequest{Email: "ranger@example.com", Password: "s3cret"}
	require.NoError(t, httpRequest(router, http.MethodPost, "/register", creds, nil, nil))

	var login api.LoginResponse
	require.NoError(t, httpRequest(router, http.MethodPost, "/login", creds, &login, nil))

	image := encodeJPEG(t)

	code, anon := predict(t, router, image, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, api.PredictResponse{Snake: "common Krait", Accuracy: 90}, anon)

	code, authed := predict(t, router, image, login.Token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, anon, authed)

	var recent api.RecentPredictionsResponse
	require.NoError(t, httpRequest(router, http.MethodGet, "/account/predictions", nil, &recent, map[string]string{"Authorization": "Bearer " + login.Token}))
	require.Len(t, recent.RecentPredictions, 1)
	assert.Equal(t, "common Krait", recent.RecentPredictions[0].Snake)
	assert.Equal(t, 90.0, recent.RecentPredictions[0].Accuracy)

	ghostToken, err := tokens.Issue(uuid.New())
	require.NoError(t, err)
	code, ghost := predict(t, router, image, ghostToken)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, anon, ghost)
}

func TestConcurrentAppendsPostgres(t *testing.T) {
	db := createDB(t)
	ctx := context.Background()

	user, err := database.CreateUser(ctx, db, "busy@example.com", "hash")
	require.NoError(t, err)

	store := database.NewHistoryStore(db)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := store.AppendPrediction(ctx, user.Id, database.HistoryEntry{
				Snake:     fmt.Sprintf("snake-%d", i),
				Accuracy:  float64(i),
				Timestamp: time.Now().UTC(),
			})
			if err == nil && !res.Modified {
				err = fmt.Errorf("append %d was not applied", i)
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	records, err := store.ListPredictions(ctx, user.Id)
	require.NoError(t, err)
	assert.Len(t, records, n)

	res, err := store.AppendPrediction(ctx, uuid.New(), database.HistoryEntry{Snake: "cobra", Timestamp: time.Now().UTC()})
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestConcurrentRegistrationPostgres(t *testing.T) {
	db := createDB(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	userErrs := make(chan error, n)
	snakeErrs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := database.CreateUser(ctx, db, "race@example.com", "hash")
			userErrs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := database.CreateSnake(ctx, db, database.Snake{Name: "cobra"})
			snakeErrs <- err
		}()
	}
	wg.Wait()
	close(userErrs)
	close(snakeErrs)

	countCreated := func(errs <-chan error, taken error) int {
		created := 0
		for err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.True(t, errors.Is(err, taken), "unexpected error: %v", err)
		}
		return created
	}

	assert.Equal(t, 1, countCreated(userErrs, database.ErrEmailTaken))
	assert.Equal(t, 1, countCreated(snakeErrs, database.ErrSnakeExists))
}
