package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
app:
  name: smsauth
  port: 8080
modules:
  auth:
    otp:
      rate_limit_window_seconds: 300
      ttl_minutes: 5
instrument:
  log_mask_fields: "password, code,,token"
cors:
  origins:
    - https://a.example
    - https://b.example
`

func TestViperFromBytes_Getters(t *testing.T) {
	// Arrange & Act
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}

	// Assert
	if got := cfg.GetString("app.name"); got != "smsauth" {
		t.Fatalf("app.name = %q", got)
	}
	if got := cfg.GetSecond("modules.auth.otp.rate_limit_window_seconds"); got != 5*time.Minute {
		t.Fatalf("window = %v", got)
	}
	if got := cfg.GetMinute("modules.auth.otp.ttl_minutes"); got != 5*time.Minute {
		t.Fatalf("ttl = %v", got)
	}
	if got := cfg.GetArray("instrument.log_mask_fields"); len(got) != 3 || got[1] != "code" {
		t.Fatalf("mask fields = %v", got)
	}
	if got := cfg.GetArray("cors.origins"); len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("origins = %v", got)
	}
	if got := cfg.GetArray("missing.key"); len(got) != 0 {
		t.Fatalf("missing key should be empty, got %v", got)
	}
}

func TestViper_EnvOverridesFile(t *testing.T) {
	// Arrange
	t.Setenv("PORT", "9999")
	t.Setenv("OTP_RATE_LIMIT_WINDOW_SECONDS", "60")

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(file, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// Act
	cfg, err := NewViper(file,
		WithEnv(map[string][]string{
			"app.port": {"PORT"},
			"modules.auth.otp.rate_limit_window_seconds": {"OTP_RATE_LIMIT_WINDOW_SECONDS"},
		}),
		WithDefaults(map[string]any{"modules.auth.otp.code_length": 6}),
	)
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	t.Cleanup(func() { _ = cfg.Close() })

	// Assert
	if got := cfg.GetInt("app.port"); got != 9999 {
		t.Fatalf("app.port = %d, want 9999", got)
	}
	if got := cfg.GetSecond("modules.auth.otp.rate_limit_window_seconds"); got != time.Minute {
		t.Fatalf("window = %v, want 1m", got)
	}
	if got := cfg.GetInt("modules.auth.otp.code_length"); got != 6 {
		t.Fatalf("default = %d, want 6", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	if err := os.WriteFile(file, []byte("SMSAUTH_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("SMSAUTH_TEST_DOTENV", "")
	os.Unsetenv("SMSAUTH_TEST_DOTENV")

	if err := LoadDotEnv(file, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("SMSAUTH_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("env = %q, want loaded", got)
	}
}
