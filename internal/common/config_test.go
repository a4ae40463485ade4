package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		ConfigFileEnv, "LLM_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"LLM_PROVIDER", "LLM_MODEL", "OCR_BACKEND", "OCR_LANGUAGES", "AZURE_VISION_ENDPOINT",
		"AZURE_VISION_KEY", "OCR_POLL_TIMEOUT", "OCR_PSM", "REPORT_LAYOUT", "TEMP_DIR", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.OCR.Backend)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4", cfg.LLM.Model)
	assert.Equal(t, float32(0), cfg.LLM.Temperature)
	assert.Equal(t, "replace", cfg.Render.UnicodePolicy)
	assert.Equal(t, 60*time.Second, cfg.OCR.Cloud.Timeout.Std())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OCR_LANGUAGES", "eng+deu,fra")
	t.Setenv("OCR_POLL_TIMEOUT", "5s")
	t.Setenv("REPORT_LAYOUT", "LINES")
	t.Setenv("OCR_PSM", "6")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLM.Model)
	assert.Equal(t, []string{"eng", "deu", "fra"}, cfg.OCR.Languages)
	assert.Equal(t, 5*time.Second, cfg.OCR.Cloud.Timeout.Std())
	assert.Equal(t, "lines", cfg.Render.Layout)
	assert.Equal(t, 6, cfg.OCR.PSM)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docextract.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
temp_dir = "/var/tmp/docx"

[ocr]
backend = "cloud"
languages = ["eng", "spa"]

[ocr.cloud]
endpoint = "https://vision.example.com"
key = "from-file"
max_interval = "2s"

[llm]
provider = "gemini"
api_key = "g-key"
`), 0o600))
	t.Setenv("AZURE_VISION_KEY", "from-env")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/tmp/docx", cfg.TempDir)
	assert.Equal(t, "cloud", cfg.OCR.Backend)
	assert.Equal(t, []string{"eng", "spa"}, cfg.OCR.Languages)
	assert.Equal(t, "from-env", cfg.OCR.Cloud.Key)
	assert.Equal(t, 2*time.Second, cfg.OCR.Cloud.MaxInterval.Std())
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileErrors(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[ocr\nbackend="), 0o600))
	_, err = LoadConfigFile(bad)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestValidateEagerCredentialChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "missing llm key", mutate: func(c *Config) { c.LLM.APIKey = "" }, wantErr: "OPENAI_API_KEY"},
		{name: "cloud without endpoint", mutate: func(c *Config) {
			c.OCR.Backend = "cloud"
			c.OCR.Cloud.Key = "k"
		}, wantErr: "AZURE_VISION_ENDPOINT"},
		{name: "cloud without key", mutate: func(c *Config) {
			c.OCR.Backend = "cloud"
			c.OCR.Cloud.Endpoint = "https://vision.example.com"
		}, wantErr: "AZURE_VISION_KEY"},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "mistral" }, wantErr: "Provider"},
		{name: "unknown layout", mutate: func(c *Config) { c.Render.Layout = "grid" }, wantErr: "Layout"},
		{name: "psm out of range", mutate: func(c *Config) { c.OCR.PSM = 14 }, wantErr: "PSM"},
		{name: "no languages", mutate: func(c *Config) { c.OCR.Languages = nil }, wantErr: "Languages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LLM.APIKey = "sk-test"
			cfg.LLM.Model = "gpt-4"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.Equal(t, CodeConfiguration, CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
