package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/config"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLayering(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "app.json", `{"app_port": "9000", "backend_driver": "memory", "rate_limit": 5}`)
	envPath := writeFile(t, dir, ".env", "APP_PORT=9100\nVITE_SUPABASE_URL=https://demo.supabase.co/\n")

	t.Setenv("APP_ENV", "production")
	require.NoError(t, config.LoadFrom(jsonPath, envPath))

	assert.Equal(t, "9100", config.AppPort(), ".env wins over app.json")
	assert.Equal(t, "memory", config.BackendDriver())
	assert.Equal(t, 5, config.RateLimit())
	assert.Equal(t, "https://demo.supabase.co", config.SupabaseURL(), "VITE_ alias, trailing slash trimmed")
	assert.True(t, config.IsProduction(), "process env wins over files")
}

func TestMissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BACKEND_DRIVER", "nonsense")
	t.Setenv("HTTP_TIMEOUT", "bogus")

	require.NoError(t, config.LoadFrom(filepath.Join(dir, "nope.json"), filepath.Join(dir, ".nope")))

	assert.Equal(t, "supabase", config.BackendDriver())
	assert.Equal(t, "file", config.KVDriver())
	assert.Equal(t, 30*time.Second, config.HTTPTimeout())
	assert.Equal(t, "storefront.db", config.DatabaseDSN())
}

func TestInvalidJSONIsAnError(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "app.json", `{not json`)

	err := config.LoadFrom(bad, filepath.Join(dir, ".env"))
	assert.Error(t, err)
}

func TestSetOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.LoadFrom(filepath.Join(dir, "a.json"), filepath.Join(dir, ".env")))

	config.Set("supabase_anon_key", "anon-123")
	assert.Equal(t, "anon-123", config.SupabaseAnonKey())
	assert.Equal(t, "fallback", config.Get("DOES_NOT_EXIST", "fallback"))
}
