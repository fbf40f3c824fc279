package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	APIKey        string        `yaml:"api_key"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // sqlite file path
}

type RedisConfig struct {
	URL        string        `yaml:"url"` // empty disables rate limiting
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	TurnLimit  int           `yaml:"turn_limit"`
	TurnWindow time.Duration `yaml:"turn_window"`
}

type AIConfig struct {
	GroqKey     string `yaml:"groq_key"`
	GroqBaseURL string `yaml:"groq_base_url"`
	GeminiKey   string `yaml:"gemini_key"`

	DefaultModel    string `yaml:"default_model"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls

	// Generation parameters. Each is optional on the wire; defaults are
	// applied here so a bare config behaves like the stock deployment.
	Temperature       *float64 `yaml:"temperature"`
	TopP              *float64 `yaml:"top_p"`
	MaxTokens         *int64   `yaml:"max_tokens"`
	RepetitionPenalty *float64 `yaml:"repetition_penalty"`
}

type RetentionConfig struct {
	MaxIdle       time.Duration `yaml:"max_idle"` // 0 disables the sweeper
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Retention RetentionConfig `yaml:"retention"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, applies defaults, and pulls provider
// credentials from the environment when the file leaves them empty. Keys
// are never baked in.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "chat_history.db"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "llama3-8b-8192"
	}
	if cfg.AI.GroqBaseURL == "" {
		cfg.AI.GroqBaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.Temperature == nil {
		cfg.AI.Temperature = float64Ptr(0.7)
	}
	if cfg.AI.TopP == nil {
		cfg.AI.TopP = float64Ptr(0.9)
	}
	if cfg.AI.MaxTokens == nil {
		cfg.AI.MaxTokens = int64Ptr(256)
	}
	if cfg.AI.GroqKey == "" {
		cfg.AI.GroqKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.AI.GeminiKey == "" {
		cfg.AI.GeminiKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Redis.TurnLimit <= 0 {
		cfg.Redis.TurnLimit = 20
	}
	if cfg.Redis.TurnWindow <= 0 {
		cfg.Redis.TurnWindow = time.Minute
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Retention.SweepInterval <= 0 {
		cfg.Retention.SweepInterval = time.Hour
	}

	// Minimal validation. Provider keys are checked at wiring time so dev
	// mode can run without any credential.
	if cfg.Database.Path == "" {
		return nil, errors.New("database.path is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func float64Ptr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64       { return &v }
