package main

import (
	"context"
	"flag"
	"log"
	"time"

	"snake-backend/cmd"
	"snake-backend/internal/config"

	"github.com/caarlos0/env/v11"
)

type PublishConfig struct {
	ModelBucket       string `env:"MODEL_BUCKET,notEmpty,required"`
	ModelPrefix       string `env:"MODEL_PREFIX" envDefault:"snake-classifier"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
}

func main() {
	var modelDir string
	flag.StringVar(&modelDir, "model-dir", "", "directory containing model.onnx and model_metadata.json")

	cmd.LoadEnvFile()

	if modelDir == "" {
		log.Fatalf("-model-dir must be provided")
	}

	var cfg PublishConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	storeCfg := &config.Config{
		S3EndpointURL:     cfg.S3EndpointURL,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3Region:          cfg.S3Region,
	}

	store, err := cmd.NewObjectStore(storeCfg)
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := cmd.PublishModelArtifacts(ctx, store, cfg.ModelBucket, cfg.ModelPrefix, modelDir); err != nil {
		log.Fatalf("Failed to publish model: %v", err)
	}

	log.Printf("published %s to %s/%s", modelDir, cfg.ModelBucket, cfg.ModelPrefix)
}
