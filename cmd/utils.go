package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"snake-backend/internal/config"
	"snake-backend/internal/core"
	"snake-backend/internal/database"
	"snake-backend/internal/storage"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	if err := godotenv.Load(configPath); err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

func NewObjectStore(cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.UsesLocalModelStore() {
		return storage.NewLocalObjectStore(cfg.LocalModelStoreDir())
	}

	return storage.NewS3ObjectStore(storage.S3ClientConfig{
		Endpoint:        cfg.S3EndpointURL,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
}

// SyncModelArtifacts replaces modelDir with the artifacts stored under
// bucket/prefix.
func SyncModelArtifacts(ctx context.Context, store storage.ObjectStore, bucket, prefix, modelDir string) error {
	objects, err := store.ListObjects(ctx, bucket, strings.TrimSuffix(prefix, "/")+"/")
	if err != nil {
		return fmt.Errorf("error listing model artifacts: %w", err)
	}

	found := map[string]bool{}
	for _, obj := range objects {
		found[filepath.Base(obj.Name)] = true
	}
	for _, required := range []string{core.ModelFileName, core.MetadataFileName} {
		if !found[required] {
			return fmt.Errorf("model artifact %s missing from %s/%s", required, bucket, prefix)
		}
	}

	if err := store.DownloadDir(ctx, bucket, prefix, modelDir, true); err != nil {
		return fmt.Errorf("error downloading model artifacts: %w", err)
	}

	slog.Info("model artifacts synced", "bucket", bucket, "prefix", prefix, "model_dir", modelDir, "objects", len(objects))
	return nil
}

func PublishModelArtifacts(ctx context.Context, store storage.ObjectStore, bucket, prefix, modelDir string) error {
	if _, err := core.LoadModelMetadata(modelDir); err != nil {
		return fmt.Errorf("refusing to publish invalid model: %w", err)
	}
	if _, err := os.Stat(filepath.Join(modelDir, core.ModelFileName)); err != nil {
		return fmt.Errorf("refusing to publish model without %s: %w", core.ModelFileName, err)
	}

	if err := store.CreateBucket(ctx, bucket); err != nil {
		return err
	}

	if err := store.UploadDir(ctx, bucket, prefix, modelDir); err != nil {
		return fmt.Errorf("error uploading model artifacts: %w", err)
	}

	slog.Info("model artifacts published", "bucket", bucket, "prefix", prefix, "model_dir", modelDir)
	return nil
}

func SeedCatalog(ctx context.Context, db *gorm.DB, labels core.LabelSet) {
	created, err := database.SeedSnakes(ctx, db, labels.Labels())
	if err != nil {
		log.Fatalf("Failed to seed snake catalog: %v", err)
	}
	slog.Info("snake catalog seeded", "created", created, "labels", labels.Len())
}
