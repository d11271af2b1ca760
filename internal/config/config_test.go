package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soundscape.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
interpreter:
  api_key: sk-test
audiogen:
  endpoint: http://localhost:9000
`)

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)

	require.Equal(t, ":8000", cfg.Server.ListenAddr)
	require.Equal(t, "gpt-3.5-turbo", cfg.Interpreter.Model)
	require.InDelta(t, 0.7, cfg.Interpreter.Temperature, 1e-9)
	require.Equal(t, int64(500), cfg.Interpreter.MaxTokens)
	require.Equal(t, 4, cfg.Renderer.MaxElements)
	require.Equal(t, "local", cfg.Storage.Backend)
	require.Equal(t, "./static", cfg.Storage.Local.Directory)
	require.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	require.True(t, cfg.Observability.EnableMetrics)
}

func TestLoadRejectsMissingRequiredValues(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_addr: ":9999"
`)

	_, err := Load(Options{ConfigFile: path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "SOUNDSCAPE_INTERPRETER_API_KEY")
	require.Contains(t, err.Error(), "SOUNDSCAPE_AUDIOGEN_ENDPOINT")
}

func TestValidateStorageBackend(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Interpreter: InterpreterConfig{APIKey: "sk", Temperature: 0.7, MaxTokens: 500},
		AudioGen:    AudioGenConfig{Endpoint: "http://localhost:9000", DurationSec: 5},
		Renderer:    RendererConfig{MaxElements: 2, TargetPeak: 0.89},
		Storage:     StorageConfig{Backend: "s3"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage.s3.bucket")

	cfg.Storage = StorageConfig{Backend: "tape"}
	err = cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage.backend")

	cfg.Storage = StorageConfig{}
	require.NoError(t, cfg.Validate())
	require.Equal(t, "local", cfg.Storage.Backend)
	require.Equal(t, "./static", cfg.Storage.Local.Directory)
}
