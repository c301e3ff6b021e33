package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Authorization AuthorizationConfig `yaml:"authorization"`
	Confirmation  ConfirmationConfig  `yaml:"confirmation"`
	Kubernetes    KubernetesConfig    `yaml:"kubernetes"`
	Slack         SlackConfig         `yaml:"slack"`
	Jobs          JobsConfig          `yaml:"jobs"`
	Database      DatabaseConfig      `yaml:"database"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig covers the admin HTTP server (health probes and the jobs API).
type ServerConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	// AuthToken guards the /api/v1 endpoints when set. Health probes are
	// always unauthenticated.
	AuthToken string `yaml:"authToken"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
}

type AuthorizationConfig struct {
	// Users is the static allow-list of chat user IDs permitted to issue
	// commands. Empty means nobody is authorized.
	Users []string `yaml:"users"`
}

type ConfirmationConfig struct {
	Token         string        `yaml:"token"`
	CaseSensitive bool          `yaml:"caseSensitive"`
	TTL           time.Duration `yaml:"ttl"`
}

type KubernetesConfig struct {
	InCluster        bool          `yaml:"inCluster"`
	Kubeconfig       string        `yaml:"kubeconfig"`
	DefaultNamespace string        `yaml:"defaultNamespace"`
	ExecTimeout      time.Duration `yaml:"execTimeout"`
	LogTailLines     int64         `yaml:"logTailLines"`
}

type SlackConfig struct {
	// Enabled turns the chat transport off entirely for local development;
	// replies and notifications then go to the log.
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken"`
	AppToken string `yaml:"appToken"`
	// Channel restricts the bot to one channel when set; empty means any
	// channel the bot is invited to.
	Channel string `yaml:"channel"`
	Debug   bool   `yaml:"debug"`
}

type JobsConfig struct {
	AsyncTimeout    time.Duration `yaml:"asyncTimeout"`
	Retention       time.Duration `yaml:"retention"`
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
}

type DatabaseConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

type SQLiteConfig struct {
	Path              string `yaml:"path"`
	MaxOpenConns      int    `yaml:"maxOpenConns"`
	PragmaJournalMode string `yaml:"pragmaJournalMode"`
	PragmaBusyTimeout int    `yaml:"pragmaBusyTimeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads a YAML config file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       RateLimitConfig{Enabled: true, RequestsPerMinute: 60},
		},
		Confirmation: ConfirmationConfig{
			Token:         "CONFIRM",
			CaseSensitive: true,
			TTL:           5 * time.Minute,
		},
		Kubernetes: KubernetesConfig{
			InCluster:        true,
			DefaultNamespace: "default",
			ExecTimeout:      30 * time.Second,
			LogTailLines:     50,
		},
		Slack: SlackConfig{
			Enabled: true,
		},
		Jobs: JobsConfig{
			AsyncTimeout:    10 * time.Minute,
			Retention:       time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:              "/data/kubot.db",
				MaxOpenConns:      1,
				PragmaJournalMode: "wal",
				PragmaBusyTimeout: 5000,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}
