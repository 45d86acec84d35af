package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Brownie44l1/emotion-detector/internal/model"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	Environment string `envconfig:"ENV" default:"development" validate:"oneof=development production test"`
	LogLevel    string `envconfig:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" default:"postgres://localhost:5432/emotion?sslmode=disable" validate:"required"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	// Model
	ModelPath          string `envconfig:"MODEL_PATH" default:"models/emotion_model.onnx" validate:"required"`
	ModelMetadataPath  string `envconfig:"MODEL_METADATA_PATH" default:"models/model_metadata.json"`
	ONNXRuntimeLibrary string `envconfig:"ONNXRUNTIME_LIB"`

	// Uploads and history
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"static/uploads" validate:"required"`
	MaxUploadBytes int    `envconfig:"MAX_UPLOAD_BYTES" default:"10485760" validate:"min=1024"`
	HistoryLimit   int    `envconfig:"HISTORY_LIMIT" default:"10" validate:"min=1,max=100"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Level is the LOG_LEVEL override, or nil to keep the environment default.
func (c *Config) Level() *slog.Level {
	if c.LogLevel == "" {
		return nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil
	}
	return &level
}

// ONNX returns the location of the model artifact.
func (c *Config) ONNX() model.ONNXConfig {
	return model.ONNXConfig{
		ModelPath:         c.ModelPath,
		MetadataPath:      c.ModelMetadataPath,
		SharedLibraryPath: c.ONNXRuntimeLibrary,
	}
}
