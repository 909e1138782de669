package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Audio.Source)
	assert.Equal(t, ":8080", cfg.Audio.HTTPAddr)
	assert.Equal(t, 16000, cfg.Audio.SampleRate)
	assert.Equal(t, 30, cfg.Audio.RateLimit)
	assert.Equal(t, "marvin", cfg.Wake.Word)
	assert.InDelta(t, 0.40, cfg.Wake.Threshold, 1e-9)
	assert.Equal(t, "MIT/ast-finetuned-speech-commands-v2", cfg.Wake.Model)
	assert.Equal(t, 750, cfg.Wake.ChunkMS)
	assert.Equal(t, "whisper-1", cfg.OpenAI.Model)
	assert.Equal(t, "en", cfg.OpenAI.Language)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	t.Setenv("TEST_HF_KEY", "hf-test")

	cfg, err := Load(writeConfig(t, `
audio:
  source: file
  file_dir: /tmp/clips
wake:
  enabled: true
  word: sheila
  threshold: 0.6
  api_key: ${TEST_HF_KEY}
openai:
  api_key: ${TEST_OPENAI_KEY}
dispatch:
  url: http://localhost:3000
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Audio.Source)
	assert.Equal(t, "/tmp/clips", cfg.Audio.FileDir)
	assert.Equal(t, "sheila", cfg.Wake.Word)
	assert.Equal(t, "hf-test", cfg.Wake.APIKey)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:3000", cfg.Dispatch.URL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = Load(writeConfig(t, "audio: [unclosed"))
	assert.ErrorContains(t, err, "parsing config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown source", mutate: func(c *Config) { c.Audio.Source = "bluetooth" }, wantErr: "audio.source"},
		{name: "threshold too high", mutate: func(c *Config) { c.Wake.Threshold = 1.5 }, wantErr: "wake.threshold"},
		{name: "negative threshold", mutate: func(c *Config) { c.Wake.Threshold = -0.1 }, wantErr: "wake.threshold"},
		{name: "wake without key", mutate: func(c *Config) { c.Wake.Enabled = true }, wantErr: "wake.api_key"},
		{name: "pushover without keys", mutate: func(c *Config) { c.Pushover.Enabled = true }, wantErr: "pushover"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
