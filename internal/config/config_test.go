package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validConfig is DefaultConfig plus the fields that have no safe default.
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Authorization.Users = []string{"U0123ABCD"}
	cfg.Slack.BotToken = "xoxb-test"
	cfg.Slack.AppToken = "xapp-test"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("expected server.port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected server.readTimeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.ShutdownTimeout != 15*time.Second {
		t.Errorf("expected server.shutdownTimeout 15s, got %v", cfg.Server.ShutdownTimeout)
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.RequestsPerMinute != 60 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.Server.RateLimit)
	}

	// Confirmation defaults
	if cfg.Confirmation.Token != "CONFIRM" {
		t.Errorf("expected confirmation.token CONFIRM, got %q", cfg.Confirmation.Token)
	}
	if !cfg.Confirmation.CaseSensitive {
		t.Error("expected confirmation.caseSensitive true")
	}
	if cfg.Confirmation.TTL != 5*time.Minute {
		t.Errorf("expected confirmation.ttl 5m, got %v", cfg.Confirmation.TTL)
	}

	// Kubernetes defaults
	if !cfg.Kubernetes.InCluster {
		t.Error("expected kubernetes.inCluster true")
	}
	if cfg.Kubernetes.DefaultNamespace != "default" {
		t.Errorf("expected kubernetes.defaultNamespace default, got %q", cfg.Kubernetes.DefaultNamespace)
	}
	if cfg.Kubernetes.ExecTimeout != 30*time.Second {
		t.Errorf("expected kubernetes.execTimeout 30s, got %v", cfg.Kubernetes.ExecTimeout)
	}
	if cfg.Kubernetes.LogTailLines != 50 {
		t.Errorf("expected kubernetes.logTailLines 50, got %d", cfg.Kubernetes.LogTailLines)
	}

	// Slack defaults
	if !cfg.Slack.Enabled {
		t.Error("expected slack.enabled true")
	}

	// Jobs defaults
	if cfg.Jobs.AsyncTimeout != 10*time.Minute {
		t.Errorf("expected jobs.asyncTimeout 10m, got %v", cfg.Jobs.AsyncTimeout)
	}
	if cfg.Jobs.Retention != time.Hour {
		t.Errorf("expected jobs.retention 1h, got %v", cfg.Jobs.Retention)
	}

	// Database defaults
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected database.driver sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Database.SQLite.Path != "/data/kubot.db" {
		t.Errorf("expected sqlite.path /data/kubot.db, got %q", cfg.Database.SQLite.Path)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging.level info, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected logging.format json, got %q", cfg.Logging.Format)
	}
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  port: 9000
authorization:
  users: ["U111", "U222"]
confirmation:
  token: "YES-REALLY"
  caseSensitive: false
  ttl: 2m
slack:
  botToken: "xoxb-abc"
  appToken: "xapp-abc"
database:
  driver: sqlite
  sqlite:
    path: "/tmp/test.db"
`
	f := writeTempYAML(t, yaml)

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if len(cfg.Authorization.Users) != 2 || cfg.Authorization.Users[0] != "U111" {
		t.Errorf("unexpected users: %v", cfg.Authorization.Users)
	}
	if cfg.Confirmation.Token != "YES-REALLY" {
		t.Errorf("expected token YES-REALLY, got %q", cfg.Confirmation.Token)
	}
	if cfg.Confirmation.CaseSensitive {
		t.Error("expected caseSensitive false")
	}
	if cfg.Confirmation.TTL != 2*time.Minute {
		t.Errorf("expected ttl 2m, got %v", cfg.Confirmation.TTL)
	}
	if cfg.Database.SQLite.Path != "/tmp/test.db" {
		t.Errorf("expected sqlite path /tmp/test.db, got %q", cfg.Database.SQLite.Path)
	}
	// Verify defaults still apply to unset fields
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected default readTimeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Kubernetes.LogTailLines != 50 {
		t.Errorf("expected default logTailLines 50, got %d", cfg.Kubernetes.LogTailLines)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	f := writeTempYAML(t, ":::invalid yaml:::")
	_, err := Load(f)
	if err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_TOKEN", "secret-token-123")
	t.Setenv("TEST_PORT", "9999")

	input := "token: ${TEST_TOKEN}\nport: ${TEST_PORT}\nmissing: ${MISSING_VAR}"
	result := expandEnvVars(input)

	if result != "token: secret-token-123\nport: 9999\nmissing: ${MISSING_VAR}" {
		t.Errorf("unexpected expansion result:\n%s", result)
	}
}

func TestExpandEnvVars_InLoad(t *testing.T) {
	t.Setenv("KUBOT_BOT_TOKEN", "xoxb-from-env")

	yaml := `
authorization:
  users: ["U111"]
slack:
  botToken: "${KUBOT_BOT_TOKEN}"
  appToken: "xapp-abc"
`
	f := writeTempYAML(t, yaml)

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Slack.BotToken != "xoxb-from-env" {
		t.Errorf("expected env-expanded token, got %q", cfg.Slack.BotToken)
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected valid config to pass validation, got: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for port 0, got nil")
	}

	cfg = validConfig()
	cfg.Server.Port = 99999
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for port 99999, got nil")
	}
}

func TestValidate_EmptyAllowList(t *testing.T) {
	cfg := validConfig()
	cfg.Authorization.Users = nil
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for empty allow-list, got nil")
	}
}

func TestValidate_ConfirmationToken(t *testing.T) {
	cfg := validConfig()
	cfg.Confirmation.Token = ""
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for empty token, got nil")
	}

	cfg = validConfig()
	cfg.Confirmation.Token = "YES PLEASE"
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for multi-word token, got nil")
	}

	cfg = validConfig()
	cfg.Confirmation.TTL = 0
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for zero TTL, got nil")
	}
}

func TestValidate_KubeconfigRequiredOutOfCluster(t *testing.T) {
	cfg := validConfig()
	cfg.Kubernetes.InCluster = false
	cfg.Kubernetes.Kubeconfig = ""
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for missing kubeconfig, got nil")
	}
}

func TestValidate_SlackRequiresTokens(t *testing.T) {
	cfg := validConfig()
	cfg.Slack.BotToken = ""
	cfg.Slack.AppToken = ""
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for missing slack tokens, got nil")
	}
}

func TestValidate_DisabledSlackNeedsNoTokens(t *testing.T) {
	cfg := validConfig()
	cfg.Slack.Enabled = false
	cfg.Slack.BotToken = ""
	cfg.Slack.AppToken = ""
	if err := Validate(cfg); err != nil {
		t.Errorf("expected no error with slack disabled, got %v", err)
	}
}

func TestValidate_InvalidDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "mongodb"
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for unknown driver, got nil")
	}
}

// writeTempYAML writes content to a temp file and returns its path.
func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	f := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(f, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp yaml: %v", err)
	}
	return f
}
