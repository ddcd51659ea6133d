package config

import "time"

// GCSConfig configures reading sources from a Cloud Storage bucket.
type GCSConfig struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint" validate:"omitempty,url"`
	Anonymous bool   `yaml:"anonymous"`
	// BreakerTimeout is how long the circuit breaker stays open.
	BreakerTimeout time.Duration `yaml:"breaker_timeout" validate:"gte=0"`
}

// DataConfig locates the trip sources.
type DataConfig struct {
	Dir string    `yaml:"dir"`
	GCS GCSConfig `yaml:"gcs"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	LogLevel   string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Timestamps string `yaml:"timestamps" validate:"oneof=strict lenient"`
	CacheSize  int    `yaml:"cache_size" validate:"gte=0"`
	// ExportCompression is the codec of files written by --export.
	ExportCompression string     `yaml:"export_compression" validate:"oneof=none lz4 zstd"`
	Data              DataConfig `yaml:"data"`
	// Cities overrides the source name of a city.
	Cities map[string]string `yaml:"cities" validate:"dive,keys,oneof=chicago 'new york city' washington,endkeys,required"`
}
