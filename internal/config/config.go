package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Recognition providers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
)

// Config holds the configuration for the application.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Catalog     CatalogConfig     `koanf:"catalog"`
	Store       StoreConfig       `koanf:"store"`
	Recognition RecognitionConfig `koanf:"recognition"`
	Telegram    TelegramConfig    `koanf:"telegram"`
	Logging     LoggingConfig     `koanf:"logging"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       float64       `koanf:"rate_limit"`
	RateBurst       int           `koanf:"rate_burst"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CatalogConfig points at the recipe catalog file. Empty means the embedded seed.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

type StoreConfig struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
}

type RecognitionConfig struct {
	Provider     string        `koanf:"provider"`
	HFToken      string        `koanf:"hf_token"`
	HFModel      string        `koanf:"hf_model"`
	GeminiAPIKey string        `koanf:"gemini_api_key"`
	GeminiModel  string        `koanf:"gemini_model"`
	Timeout      time.Duration `koanf:"timeout"`
}

// TelegramConfig is optional for the CLI, required when the bot is enabled.
type TelegramConfig struct {
	Enabled        bool    `koanf:"enabled"`
	BotToken       string  `koanf:"bot_token"`
	WebhookURL     string  `koanf:"webhook_url"`
	AllowedUserIDs []int64 `koanf:"allowed_user_ids"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            4000,
			CORSOrigins:     []string{"*"},
			RateLimit:       20,
			RateBurst:       40,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend: BackendJSON,
			Path:    "data/user-data.json",
		},
		Recognition: RecognitionConfig{
			Provider:    ProviderHuggingFace,
			HFModel:     "nateraw/food",
			GeminiModel: "gemini-2.5-flash",
			Timeout:     20 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings maps environment variable names to config keys.
var envMappings = map[string]string{
	"PORT":                        "server.port",
	"PANTRY_PORT":                 "server.port",
	"PANTRY_HOST":                 "server.host",
	"PANTRY_CORS_ORIGINS":         "server.cors_origins",
	"PANTRY_RATE_LIMIT":           "server.rate_limit",
	"PANTRY_RATE_BURST":           "server.rate_burst",
	"PANTRY_READ_TIMEOUT":         "server.read_timeout",
	"PANTRY_WRITE_TIMEOUT":        "server.write_timeout",
	"PANTRY_SHUTDOWN_TIMEOUT":     "server.shutdown_timeout",
	"PANTRY_CATALOG_PATH":         "catalog.path",
	"PANTRY_STORE_BACKEND":        "store.backend",
	"PANTRY_STORE_PATH":           "store.path",
	"PANTRY_RECOGNITION_PROVIDER": "recognition.provider",
	"HF_API_TOKEN":                "recognition.hf_token",
	"PANTRY_HF_TOKEN":             "recognition.hf_token",
	"PANTRY_HF_MODEL":             "recognition.hf_model",
	"GEMINI_API_KEY":              "recognition.gemini_api_key",
	"PANTRY_GEMINI_MODEL":         "recognition.gemini_model",
	"PANTRY_RECOGNITION_TIMEOUT":  "recognition.timeout",
	"PANTRY_TELEGRAM_ENABLED":     "telegram.enabled",
	"TELEGRAM_BOT_TOKEN":          "telegram.bot_token",
	"TELEGRAM_WEBHOOK_URL":        "telegram.webhook_url",
	"TELEGRAM_ALLOW_USER_IDS":     "telegram.allowed_user_ids",
	"LOG_LEVEL":                   "logging.level",
	"LOG_FORMAT":                  "logging.format",
}

// sliceKeys arrive from the environment as comma separated strings.
var sliceKeys = []string{"server.cors_origins", "telegram.allowed_user_ids"}

// NewFromEnv creates a new Config from defaults, an optional YAML file and
// environment variables, in that order of precedence.
func NewFromEnv() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// A missing .env file is fine.
		_ = godotenv.Load()
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := splitSliceKeys(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey returns the config key for an environment variable, or "" to skip it.
func envKey(name string) string {
	return envMappings[name]
}

func splitSliceKeys(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var values []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
		if err := k.Set(key, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative"))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server timeouts must be positive"))
	}

	switch c.Store.Backend {
	case BackendJSON, BackendSQLite, BackendBadger:
	default:
		errs = append(errs, fmt.Errorf("store.backend must be one of json, sqlite, badger, got %q", c.Store.Backend))
	}
	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path must be set"))
	}

	switch c.Recognition.Provider {
	case ProviderHuggingFace, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("recognition.provider must be huggingface or gemini, got %q", c.Recognition.Provider))
	}
	if c.Recognition.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("recognition.timeout must be positive"))
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			errs = append(errs, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set"))
		}
		if c.Telegram.WebhookURL == "" {
			errs = append(errs, fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set"))
		}
	}

	return errors.Join(errs...)
}
