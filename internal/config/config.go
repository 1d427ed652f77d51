package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"5000"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"./data/snakes.db"`

	JWTSecret string        `env:"JWT_SECRET,notEmpty,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	ModelDir           string `env:"MODEL_DIR" envDefault:"./model"`
	OnnxRuntimeDylib   string `env:"ONNX_RUNTIME_DYLIB"`
	OnnxIntraOpThreads int    `env:"ONNX_INTRA_OP_THREADS" envDefault:"0"`

	ModelBucket       string `env:"MODEL_BUCKET"`
	ModelPrefix       string `env:"MODEL_PREFIX" envDefault:"snake-classifier"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`

	MaxUploadBytes     int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxImagePixels     int           `env:"MAX_IMAGE_PIXELS" envDefault:"40000000"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	SeedCatalog        bool          `env:"SEED_CATALOG" envDefault:"false"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.S3EndpointURL != "" && !cfg.UsesLocalModelStore() && (cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "") {
		log.Println("Warning: S3_ENDPOINT_URL is set, but AWS_ACCESS_KEY_ID or AWS_SECRET_ACCESS_KEY are missing.")
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("MAX_IMAGE_PIXELS must be positive, got %d", c.MaxImagePixels)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.OnnxIntraOpThreads < 0 {
		return fmt.Errorf("ONNX_INTRA_OP_THREADS must not be negative, got %d", c.OnnxIntraOpThreads)
	}
	return nil
}

const localStoreScheme = "file://"

// UsesLocalModelStore reports whether model artifacts are served from a local
// directory instead of an S3 compatible bucket.
func (c *Config) UsesLocalModelStore() bool {
	return strings.HasPrefix(c.S3EndpointURL, localStoreScheme)
}

func (c *Config) LocalModelStoreDir() string {
	return strings.TrimPrefix(c.S3EndpointURL, localStoreScheme)
}
