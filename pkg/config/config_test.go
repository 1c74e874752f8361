package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "datacleaner.yaml")
		body := "listen: 127.0.0.1:9000\nsession_ttl: 5m\ncors_origins: [https://example.com]\ncoerce_tolerance: 0.25\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
		assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
		assert.Equal(t, []string{"https://example.com"}, cfg.CORSOrigins)
		assert.Equal(t, 0.25, cfg.CoerceTolerance)
		assert.Equal(t, int64(32), cfg.MaxUploadMB)
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("missing_threshold: 2\n"), 0o600))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
