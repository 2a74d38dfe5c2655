package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/samvada/internal/chat"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "You are a helpful assistant.", cfg.SystemPrompt)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.APIEndpoint)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty model", "model: \"\"\napi_endpoint: https://x\n", "invalid config"},
		{"missing model", "api_endpoint: https://x\n", "invalid config"},
		{"non-http endpoint", "model: m\napi_endpoint: ftp://x\n", "invalid config"},
		{"malformed yaml", "model: [\n", "decode config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_IgnoresUnknownKeys(t *testing.T) {
	cfg, err := Parse([]byte("model: m\napi_endpoint: http://localhost:11434/v1/chat/completions\ntheme: dark\n"))
	require.NoError(t, err)
	assert.Equal(t, "m", cfg.Model)
	assert.Equal(t, "", cfg.SystemPrompt)
}

func TestFields(t *testing.T) {
	cfg := &Config{SystemPrompt: "s", Model: "m", APIEndpoint: "https://e"}
	assert.Equal(t, chat.Fields{
		chat.KeySystem:      "s",
		chat.KeyModel:       "m",
		chat.KeyAPIEndpoint: "https://e",
	}, cfg.Fields())
}

func TestDir_FromEnvironment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	t.Setenv(HomeEnv, dir)

	got, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureFile(t *testing.T) {
	dir := t.TempDir()

	path, created, err := EnsureFile(dir)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	// An existing file is left alone.
	require.NoError(t, os.WriteFile(path, []byte("model: custom\napi_endpoint: https://c\n"), 0o644))
	_, created, err = EnsureFile(dir)
	require.NoError(t, err)
	assert.False(t, created)

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Model)
}

func TestLoad_ErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("model: \"\"\napi_endpoint: https://x\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}
