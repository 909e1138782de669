package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	Wake     WakeConfig     `yaml:"wake"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Pushover PushoverConfig `yaml:"pushover"`
	Log      LogConfig      `yaml:"log"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	HTTPAddr   string `yaml:"http_addr"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
	AuthToken  string `yaml:"auth_token"`
	// RateLimit is requests per minute per client; negative disables it.
	RateLimit int `yaml:"rate_limit"`
	// TrustedProxies may set X-Forwarded-For / X-Real-IP. Addresses or CIDRs.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type WakeConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Word      string  `yaml:"word"`
	Threshold float64 `yaml:"threshold"`
	Model     string  `yaml:"model"`
	APIKey    string  `yaml:"api_key"`
	ChunkMS   int     `yaml:"chunk_ms"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

// DispatchConfig points at the map front-end webhook. An empty URL logs commands instead.
type DispatchConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = "http"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.RateLimit == 0 {
		c.Audio.RateLimit = 30
	}
	if c.Wake.Word == "" {
		c.Wake.Word = "marvin"
	}
	if c.Wake.Threshold == 0 {
		c.Wake.Threshold = 0.40
	}
	if c.Wake.Model == "" {
		c.Wake.Model = "MIT/ast-finetuned-speech-commands-v2"
	}
	if c.Wake.ChunkMS == 0 {
		c.Wake.ChunkMS = 750
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "whisper-1"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Audio.Source {
	case "http", "file", "microphone":
	default:
		errs = append(errs, fmt.Errorf("audio.source: unknown source %q", c.Audio.Source))
	}
	if c.Audio.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate: must be positive, got %d", c.Audio.SampleRate))
	}
	if c.Wake.Threshold < 0 || c.Wake.Threshold >= 1 {
		errs = append(errs, fmt.Errorf("wake.threshold: must be in [0, 1), got %v", c.Wake.Threshold))
	}
	if c.Wake.ChunkMS < 0 {
		errs = append(errs, fmt.Errorf("wake.chunk_ms: must be positive, got %d", c.Wake.ChunkMS))
	}
	if c.Wake.Enabled && c.Wake.APIKey == "" {
		errs = append(errs, errors.New("wake.api_key: required when wake.enabled is set"))
	}
	if c.Pushover.Enabled && (c.Pushover.Token == "" || c.Pushover.UserKey == "") {
		errs = append(errs, errors.New("pushover: token and user_key required when enabled"))
	}

	return errors.Join(errs...)
}
