package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(t *testing.T, key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Defaults", func(t *testing.T) {
		setEnv(t, "APP_ENV", "production")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Server.Port != 4000 {
			t.Errorf("Expected port 4000, got %d", cfg.Server.Port)
		}
		if cfg.Store.Backend != BackendJSON {
			t.Errorf("Expected json backend, got '%s'", cfg.Store.Backend)
		}
		if cfg.Recognition.Timeout != 20*time.Second {
			t.Errorf("Expected 20s recognition timeout, got %s", cfg.Recognition.Timeout)
		}
		if cfg.Catalog.Path != "" {
			t.Errorf("Expected empty catalog path, got '%s'", cfg.Catalog.Path)
		}
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		setEnv(t, "APP_ENV", "production")
		setEnv(t, "PORT", "8080")
		setEnv(t, "HF_API_TOKEN", "hf_secret")
		setEnv(t, "PANTRY_STORE_BACKEND", "sqlite")
		setEnv(t, "PANTRY_STORE_PATH", "data/state.db")
		setEnv(t, "PANTRY_RECOGNITION_TIMEOUT", "5s")
		setEnv(t, "PANTRY_CORS_ORIGINS", "http://localhost:3000, https://pantry.example")
		setEnv(t, "TELEGRAM_ALLOW_USER_IDS", "42,7")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Server.Port != 8080 {
			t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
		}
		if cfg.Recognition.HFToken != "hf_secret" {
			t.Errorf("Expected HF token 'hf_secret', got '%s'", cfg.Recognition.HFToken)
		}
		if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "data/state.db" {
			t.Errorf("Unexpected store config %+v", cfg.Store)
		}
		if cfg.Recognition.Timeout != 5*time.Second {
			t.Errorf("Expected 5s timeout, got %s", cfg.Recognition.Timeout)
		}
		if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://pantry.example" {
			t.Errorf("Unexpected CORS origins %v", cfg.Server.CORSOrigins)
		}
		if len(cfg.Telegram.AllowedUserIDs) != 2 || cfg.Telegram.AllowedUserIDs[0] != 42 {
			t.Errorf("Unexpected allowed user ids %v", cfg.Telegram.AllowedUserIDs)
		}
	})

	t.Run("YAMLFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "pantry.yaml")
		content := "server:\n  port: 5050\nstore:\n  backend: badger\n  path: data/badger\nlogging:\n  level: debug\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		setEnv(t, "APP_ENV", "production")
		setEnv(t, "CONFIG_PATH", path)
		setEnv(t, "LOG_LEVEL", "warn")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Server.Port != 5050 {
			t.Errorf("Expected port 5050, got %d", cfg.Server.Port)
		}
		if cfg.Store.Backend != BackendBadger {
			t.Errorf("Expected badger backend, got '%s'", cfg.Store.Backend)
		}
		if cfg.Logging.Level != "warn" {
			t.Errorf("Expected environment to win over file, got '%s'", cfg.Logging.Level)
		}
	})

	t.Run("MissingConfigFile", func(t *testing.T) {
		setEnv(t, "APP_ENV", "production")
		setEnv(t, "CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for a missing explicit config file, got nil")
		}
	})

	t.Run("InvalidBackend", func(t *testing.T) {
		setEnv(t, "APP_ENV", "production")
		setEnv(t, "PANTRY_STORE_BACKEND", "postgres")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for an unknown backend, got nil")
		}
	})

	t.Run("TelegramRequiresToken", func(t *testing.T) {
		setEnv(t, "APP_ENV", "production")
		setEnv(t, "PANTRY_TELEGRAM_ENABLED", "true")
		os.Unsetenv("TELEGRAM_BOT_TOKEN")
		setEnv(t, "TELEGRAM_WEBHOOK_URL", "https://bot.example/telegram/webhook")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing TELEGRAM_BOT_TOKEN, got nil")
		}
		expectedError := "TELEGRAM_BOT_TOKEN environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})
}
