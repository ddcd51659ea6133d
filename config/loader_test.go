package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
log_level: debug
timestamps: lenient
data:
  gcs:
    bucket: divvy-trips
    breaker_timeout: 5s
cities:
  new york city: nyc.csv
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "lenient", cfg.Timestamps)
	assert.Equal(t, 3, cfg.CacheSize)
	assert.Equal(t, ".", cfg.Data.Dir)
	assert.Equal(t, "divvy-trips", cfg.Data.GCS.Bucket)
	assert.Equal(t, 5*time.Second, cfg.Data.GCS.BreakerTimeout)
	assert.Equal(t, map[string]string{"new york city": "nyc.csv"}, cfg.Cities)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"log level", "log_level: verbose"},
		{"timestamps", "timestamps: sloppy"},
		{"cache size", "cache_size: -1"},
		{"unknown city", "cities:\n  boston: boston.csv"},
		{"blank source", "cities:\n  chicago: \"\""},
		{"endpoint", "data:\n  gcs:\n    endpoint: not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestParseRequiresDataLocation(t *testing.T) {
	_, err := Parse([]byte("data:\n  dir: \"\"\n"))
	assert.Error(t, err)
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("log_level: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bikeshare.yml")
	require.NoError(t, os.WriteFile(path, []byte("cache_size: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.CacheSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadWithoutDefaultFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() {
		_ = os.Chdir(wd)
	}()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
