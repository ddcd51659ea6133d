package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no configuration file is given.
const DefaultPath = "bikeshare.yml"

// Default returns the configuration used for absent keys.
func Default() AppConfig {
	return AppConfig{
		LogLevel:          "info",
		Timestamps:        "strict",
		CacheSize:         3,
		ExportCompression: "zstd",
		Data: DataConfig{
			Dir: ".",
			GCS: GCSConfig{BreakerTimeout: 30 * time.Second},
		},
	}
}

// Load reads and validates the configuration at path. An empty path reads
// DefaultPath if it exists.
func Load(path string) (AppConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return AppConfig{}, err
	}
	return Parse(data)
}

// Parse decodes YAML over Default() and validates the result.
func Parse(data []byte) (AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Data.Dir == "" && cfg.Data.GCS.Bucket == "" {
		return errors.New("invalid configuration: one of data.dir or data.gcs.bucket is required")
	}
	return nil
}
