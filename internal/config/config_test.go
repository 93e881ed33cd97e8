package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != defaultListen || cfg.Currency != "PKR" || cfg.ReminderCron != "0 8 * * *" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
listen: ":9090"
timezone: "UTC"
jwt_secret: "from-file"
authorized_emails:
  - " sara@example.com "
  - ""
  - ali@example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	t.Setenv("TREATS_JWT_SECRET", "from-env")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q, want :9090", cfg.Listen)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("expected env to override file, got %q", cfg.JWTSecret)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if want := []string{"sara@example.com", "ali@example.com"}; !reflect.DeepEqual(cfg.AuthorizedEmails, want) {
		t.Errorf("AuthorizedEmails = %v, want %v", cfg.AuthorizedEmails, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [unterminated"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv_Lists(t *testing.T) {
	cfg := DefaultConfig()
	env := map[string]string{
		"TREATS_AUTHORIZED_EMAILS": "a@example.com, b@example.com",
		"TREATS_CORS_ORIGINS":      "https://treats.example.com",
	}
	cfg.applyEnv(func(k string) string { return env[k] })
	cfg.Normalize()

	if want := []string{"a@example.com", "b@example.com"}; !reflect.DeepEqual(cfg.AuthorizedEmails, want) {
		t.Errorf("AuthorizedEmails = %v, want %v", cfg.AuthorizedEmails, want)
	}
	if want := []string{"https://treats.example.com"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(c *Config) { c.JWTSecret = "s" }, false},
		{"missing secret", func(c *Config) {}, true},
		{"bad timezone", func(c *Config) { c.JWTSecret = "s"; c.Timezone = "Mars/Olympus" }, true},
		{"bad log level", func(c *Config) { c.JWTSecret = "s"; c.LogLevel = "loud" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TREATS_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("TREATS_TEST_DOTENV", "")
	os.Unsetenv("TREATS_TEST_DOTENV")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("TREATS_TEST_DOTENV"); got != "loaded" {
		t.Errorf("TREATS_TEST_DOTENV = %q, want loaded", got)
	}
}
