package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_HOST", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "localhost:3000", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "fs", cfg.Store.Backend)
	assert.Equal(t, "verifiedpermissions", cfg.Pricing.Family)
	assert.Equal(t, "gemini-1.5-flash", cfg.Chat.Model)
	assert.Zero(t, cfg.Chat.Timeout)
	assert.Empty(t, cfg.Chat.APIKey)
}

func TestLoadConfig_ValidYAML_PopulatesAllFields(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "pricelist.yaml")
	content := `server:
  host: "0.0.0.0"
  port: "8080"
  shutdown_timeout: 5s
store:
  backend: s3
  bucket: pricing-docs
  prefix: mirror
chat:
  model: gemini-2.0-flash
  timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "s3", cfg.Store.Backend)
	assert.Equal(t, "pricing-docs", cfg.Store.Bucket)
	assert.Equal(t, "mirror", cfg.Store.Prefix)
	assert.Equal(t, "us-east-1", cfg.Store.Region)
	assert.Equal(t, "gemini-2.0-flash", cfg.Chat.Model)
	assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("PRICELIST_STORE_ROOT", "/srv/pricing")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Chat.APIKey)
	assert.Equal(t, "/srv/pricing", cfg.Store.Root)
}

func TestLoadConfig_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: host: bad: yaml"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
