package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snake-backend/cmd"
	"snake-backend/internal/api"
	"snake-backend/internal/auth"
	"snake-backend/internal/config"
	"snake-backend/internal/core"
	"snake-backend/internal/database"
	"snake-backend/internal/history"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	ort "github.com/yalue/onnxruntime_go"
)

func loadPredictor(cfg *config.Config) (*core.Predictor, core.Classifier) {
	meta, err := core.LoadModelMetadata(cfg.ModelDir)
	if err != nil {
		log.Fatalf("Failed to load model metadata: %v", err)
	}

	labels, err := core.NewLabelSet(meta.Classes)
	if err != nil {
		log.Fatalf("Invalid label set: %v", err)
	}

	normalizer, err := core.NewNormalizer(meta)
	if err != nil {
		log.Fatalf("Failed to create image normalizer: %v", err)
	}
	normalizer.WithMaxPixels(cfg.MaxImagePixels)

	loaders := core.NewClassifierLoaders(core.OnnxOptions{IntraOpThreads: cfg.OnnxIntraOpThreads})
	classifier, err := loaders[core.OnnxImageClassifier](cfg.ModelDir, meta)
	if err != nil {
		log.Fatalf("Failed to load classifier: %v", err)
	}

	predictor, err := core.NewPredictor(normalizer, classifier, labels)
	if err != nil {
		log.Fatalf("Model and preprocessing are incompatible: %v", err)
	}

	slog.Info("classifier loaded", "model_dir", cfg.ModelDir, "classes", labels.Len(), "input_shape", meta.InputShape, "preprocessing", meta.Preprocessing)

	return predictor, classifier
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	if cfg.OnnxRuntimeDylib != "" {
		ort.SetSharedLibraryPath(cfg.OnnxRuntimeDylib)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		log.Fatalf("could not init ONNX Runtime: %v", err)
	}
	defer func() {
		if err := ort.DestroyEnvironment(); err != nil {
			log.Printf("error destroying onnx env: %v", err)
		}
	}()

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if cfg.ModelBucket != "" {
		store, err := cmd.NewObjectStore(cfg)
		if err != nil {
			log.Fatalf("Failed to create object store: %v", err)
		}

		if err := cmd.SyncModelArtifacts(context.Background(), store, cfg.ModelBucket, cfg.ModelPrefix, cfg.ModelDir); err != nil {
			log.Fatalf("Failed to sync model artifacts: %v", err)
		}
	}

	predictor, classifier := loadPredictor(cfg)
	defer classifier.Release()

	if cfg.SeedCatalog {
		cmd.SeedCatalog(context.Background(), db, predictor.Labels())
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	api.AddServiceRoutes(r)
	api.NewPredictionService(predictor, history.NewRecorder(database.NewHistoryStore(db)), tokens, cfg.MaxUploadBytes).AddRoutes(r)
	api.NewAccountService(db, tokens).AddRoutes(r)
	api.NewCatalogService(db).AddRoutes(r)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %d", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	log.Println("Server stopped.")
}
