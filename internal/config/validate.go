package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for errors.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	if len(cfg.Authorization.Users) == 0 {
		errs = append(errs, "authorization.users must list at least one user ID")
	}

	if cfg.Confirmation.Token == "" {
		errs = append(errs, "confirmation.token must not be empty")
	}
	if strings.ContainsAny(cfg.Confirmation.Token, " \t\n") {
		errs = append(errs, "confirmation.token must be a single word")
	}
	if cfg.Confirmation.TTL <= 0 {
		errs = append(errs, "confirmation.ttl must be positive")
	}

	if !cfg.Kubernetes.InCluster && cfg.Kubernetes.Kubeconfig == "" {
		errs = append(errs, "kubernetes.kubeconfig is required when inCluster is false")
	}
	if cfg.Kubernetes.ExecTimeout <= 0 {
		errs = append(errs, "kubernetes.execTimeout must be positive")
	}

	if cfg.Slack.Enabled {
		if cfg.Slack.BotToken == "" {
			errs = append(errs, "slack.botToken is required when slack is enabled")
		}
		if cfg.Slack.AppToken == "" {
			errs = append(errs, "slack.appToken is required when slack is enabled")
		}
	}

	if cfg.Jobs.AsyncTimeout <= 0 {
		errs = append(errs, "jobs.asyncTimeout must be positive")
	}

	if cfg.Database.Driver != "sqlite" {
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite (got %q)", cfg.Database.Driver))
	}
	if cfg.Database.SQLite.Path == "" {
		errs = append(errs, "database.sqlite.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
