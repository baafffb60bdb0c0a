package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ProjectConfigDir)
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, ProjectConfigFilename), []byte(content), 0o644))
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ProjectConfigDir, "langops.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dir, ProjectConfigDir, "profiles.yaml"), cfg.ProfilesPath)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir, `
database:
  path: /data/langops.db
metrics:
  enabled: true
  prometheus_url: http://prom:9090
retry:
  max_attempts: 5
ollama_host: http://gpu-box:11434
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "/data/langops.db", cfg.Database.Path)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "http://prom:9090", cfg.Metrics.PrometheusURL)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, "http://gpu-box:11434", cfg.OllamaHost)
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LANGOPS_TEST_DB", "/mnt/data/test.db")
	writeProjectConfig(t, dir, `
database:
  path: ${LANGOPS_TEST_DB}
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "/mnt/data/test.db", cfg.Database.Path)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir, `
retry:
  max_attempts: -1
`)

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestSecretsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	secrets := map[string]string{
		SecretAnthropicAPIKey: "sk-ant-test",
		SecretOpenAIAPIKey:    "sk-test",
	}

	require.NoError(t, EncryptSecretsFile(dir, "hunter2", secrets))
	assert.True(t, SecretsFileExists(dir))

	// File must be unreadable by other users.
	info, err := os.Stat(filepath.Join(dir, ProjectConfigDir, "secrets.json.enc"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	decrypted, err := DecryptSecretsFile(dir, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, secrets, decrypted)
}

func TestDecryptWrongPassword(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EncryptSecretsFile(dir, "correct", map[string]string{"K": "v"}))

	_, err := DecryptSecretsFile(dir, "wrong")
	assert.Error(t, err)
}

func TestGetSecretPrecedence(t *testing.T) {
	t.Cleanup(func() { SetDecryptedSecrets(nil) })

	t.Setenv("LANGOPS_TEST_SECRET", "from-env")
	value, err := GetSecret("LANGOPS_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)

	// The decrypted file wins over the environment.
	SetDecryptedSecrets(map[string]string{"LANGOPS_TEST_SECRET": "from-file"})
	value, err = GetSecret("LANGOPS_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)

	_, err = GetSecret("LANGOPS_MISSING_SECRET")
	assert.Error(t, err)
	assert.Empty(t, GetSecretOrEmpty("LANGOPS_MISSING_SECRET"))
}

func TestSetAndDeleteSecret(t *testing.T) {
	t.Cleanup(func() { SetDecryptedSecrets(nil) })
	SetDecryptedSecrets(nil)

	SetSecret("A", "1")
	SetSecret("B", "2")
	assert.Equal(t, []string{"A", "B"}, GetDecryptedSecretNames())

	DeleteSecret("A")
	assert.Equal(t, []string{"B"}, GetDecryptedSecretNames())
}
