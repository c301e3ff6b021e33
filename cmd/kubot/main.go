package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonny/kubot/internal/adapter/inbound/admin"
	"github.com/jonny/kubot/internal/adapter/inbound/slackbot"
	"github.com/jonny/kubot/internal/adapter/outbound/kubernetes"
	"github.com/jonny/kubot/internal/adapter/outbound/notification"
	slacknotifier "github.com/jonny/kubot/internal/adapter/outbound/notification/slack"
	"github.com/jonny/kubot/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/kubot/internal/config"
	"github.com/jonny/kubot/internal/domain/port/outbound"
	"github.com/jonny/kubot/internal/domain/service"
	"github.com/jonny/kubot/pkg/health"
	"github.com/jonny/kubot/pkg/version"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	printVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = buildLogger(cfg.Logging)

	// --- Database ---
	store, err := sqlite.NewStore(sqlite.Config{
		Path:              cfg.Database.SQLite.Path,
		MaxOpenConns:      cfg.Database.SQLite.MaxOpenConns,
		PragmaJournalMode: cfg.Database.SQLite.PragmaJournalMode,
		PragmaBusyTimeout: cfg.Database.SQLite.PragmaBusyTimeout,
	})
	if err != nil {
		logger.Error("failed to open sqlite store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	historyRepo := sqlite.NewHistoryRepo(store)
	auditRepo := sqlite.NewAuditRepo(store)

	// --- Kubernetes ---
	clients, err := kubernetes.NewClients(cfg.Kubernetes.InCluster, cfg.Kubernetes.Kubeconfig)
	if err != nil {
		logger.Error("failed to build kubernetes clients", "error", err)
		os.Exit(1)
	}
	cluster := kubernetes.NewCluster(clients, cfg.Kubernetes.ExecTimeout)

	// --- Notifier ---
	var notifier outbound.Notifier
	if cfg.Slack.Enabled {
		notifier = slacknotifier.NewNotifier(slacknotifier.Config{
			BotToken: cfg.Slack.BotToken,
			Debug:    cfg.Slack.Debug,
		})
	} else {
		notifier = notification.NewNoopNotifier(logger)
	}

	// --- Domain services ---
	jobs := service.NewJobRegistry()
	pending := service.NewPendingStore()
	authorizer := service.NewAuthorizer(cfg.Authorization.Users)
	interpreter := service.NewInterpreter(cfg.Kubernetes.DefaultNamespace, cfg.Kubernetes.LogTailLines)
	dispatcher := service.NewDispatcher(cluster, notifier, historyRepo, auditRepo, jobs,
		cfg.Kubernetes.ExecTimeout, cfg.Jobs.AsyncTimeout, version.String())

	session := service.NewSession(authorizer, interpreter, pending, dispatcher,
		service.Repositories{History: historyRepo, Audits: auditRepo},
		service.ConfirmationPolicy{
			Token:         cfg.Confirmation.Token,
			CaseSensitive: cfg.Confirmation.CaseSensitive,
			TTL:           cfg.Confirmation.TTL,
		})

	// --- Slack transport ---
	var bot *slackbot.Bot
	if cfg.Slack.Enabled {
		bot = slackbot.NewBot(slackbot.Config{
			BotToken:     cfg.Slack.BotToken,
			AppToken:     cfg.Slack.AppToken,
			Channel:      cfg.Slack.Channel,
			ConfirmToken: cfg.Confirmation.Token,
			Debug:        cfg.Slack.Debug,
		}, session, logger)
	}

	// --- Health checker ---
	checker := health.NewChecker()
	checker.Register("database", func(ctx context.Context) error {
		return store.DB.PingContext(ctx)
	})
	checker.Register("kubernetes", func(ctx context.Context) error {
		return cluster.HealthCheck(ctx)
	})

	// --- Admin server ---
	adminHandler := admin.NewHandler(jobs, historyRepo, auditRepo)
	adminServer := admin.NewServer(admin.ServerConfig{
		Port:              cfg.Server.Port,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		RateLimitEnabled:  cfg.Server.RateLimit.Enabled,
		RequestsPerMinute: cfg.Server.RateLimit.RequestsPerMinute,
		AuthToken:         cfg.Server.AuthToken,
	}, adminHandler, checker, logger)

	// --- Signal handling & startup ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting admin server", "port", cfg.Server.Port)
		return adminServer.Start(gCtx)
	})

	if bot != nil {
		g.Go(func() error {
			logger.Info("starting slack bot", "channel", cfg.Slack.Channel)
			return bot.Start(gCtx)
		})
	} else {
		logger.Info("slack transport disabled; replies go to the log")
	}

	// Background maintenance: drop expired confirmations and old jobs.
	g.Go(func() error {
		sweep := time.NewTicker(time.Minute)
		cleanup := time.NewTicker(cfg.Jobs.CleanupInterval)
		defer sweep.Stop()
		defer cleanup.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-sweep.C:
				if n := pending.Sweep(); n > 0 {
					logger.Debug("swept expired pending actions", "count", n)
				}
			case <-cleanup.C:
				if n := jobs.Cleanup(cfg.Jobs.Retention); n > 0 {
					logger.Info("cleaned up finished jobs", "count", n)
				}
			}
		}
	})

	logger.Info("kubot started", "version", version.String())

	if err := g.Wait(); err != nil {
		logger.Error("exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("kubot stopped")
}

// buildLogger constructs a slog.Logger based on config.
func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
