package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults apply when no file or env is present", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":5000", cfg.ServerAddress)
		assert.Equal(t, "docsync.db", cfg.DatabasePath)
		assert.False(t, cfg.UsePostgres())
		assert.Equal(t, "X-API-Key", cfg.Security.APIKeyHeader)
		assert.Equal(t, 3, cfg.Destination.PollIntervalSeconds)
		assert.Equal(t, 120, cfg.Destination.UploadTimeoutSeconds)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, 5, cfg.Scheduler.RemoteIntervalMinutes)
		assert.Equal(t, 3, cfg.Scheduler.LocalIntervalMinutes)
		assert.Equal(t, int64(50), cfg.MaxUploadMB)
	})

	t.Run("reads the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		content := `{
			"serverAddress": ":9999",
			"destination": {"baseUrl": "https://index.example.com", "apiKey": "dest-key"},
			"scheduler": {"enabled": false}
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
		t.Setenv("CONFIG_PATH", path)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":9999", cfg.ServerAddress)
		assert.Equal(t, "https://index.example.com", cfg.Destination.BaseURL)
		assert.Equal(t, "dest-key", cfg.Destination.APIKey)
		assert.False(t, cfg.Scheduler.Enabled)
	})

	t.Run("invalid config file fails load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))
		t.Setenv("CONFIG_PATH", path)

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("environment overrides file and defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"serverAddress": ":9999"}`), 0600))
		t.Setenv("CONFIG_PATH", path)
		t.Setenv("SERVER_ADDRESS", ":7777")
		t.Setenv("DATABASE_URL", "postgres://localhost/docsync")
		t.Setenv("API_KEY", "env-key")
		t.Setenv("SCHEDULER_REMOTE_INTERVAL_MINUTES", "42")
		t.Setenv("REMOTE_SOURCE_BUCKET", "my-bucket")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":7777", cfg.ServerAddress)
		assert.True(t, cfg.UsePostgres())
		assert.Equal(t, "env-key", cfg.Security.APIKey)
		assert.Equal(t, 42, cfg.Scheduler.RemoteIntervalMinutes)
		assert.Equal(t, "my-bucket", cfg.RemoteSource.Bucket)
	})

	t.Run("non-positive interval overrides are ignored", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
		t.Setenv("SCHEDULER_LOCAL_INTERVAL_MINUTES", "0")
		t.Setenv("DESTINATION_UPLOAD_TIMEOUT_SECONDS", "-1")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3, cfg.Scheduler.LocalIntervalMinutes)
		assert.Equal(t, 120, cfg.Destination.UploadTimeoutSeconds)
	})
}
