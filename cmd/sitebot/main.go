package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sitebot/internal/classifier"
	"sitebot/internal/config"
	"sitebot/internal/domain"
	"sitebot/internal/metrics"
	"sitebot/internal/notify"
	"sitebot/internal/queue"
	"sitebot/internal/store"
	"sitebot/internal/whatsapp"
	"sitebot/internal/worker"
	"sitebot/internal/workflow"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "sitebot",
		Short: "sitebot: WhatsApp message triage for construction sites",
		Long:  "sitebot ingests WhatsApp webhook events, classifies each message with a local LLM, and routes it to the matching site workflow.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: ~/.sitebot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(doctorCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() (*config.Config, error) {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setLogLevel replaces the process logger with one at the configured level.
func setLogLevel(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists at %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server and worker pool",
		Long:  "Starts the WhatsApp webhook HTTP server, the processing workers, and (if enabled) the metrics endpoint. Press Ctrl+C to stop.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setLogLevel(cfg.General.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	msgStore, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("message store: %w", err)
	}
	defer msgStore.Close()

	cls := classifier.New(classifier.Config{
		URL:            cfg.Ollama.URL,
		Model:          cfg.Ollama.Model,
		Timeout:        time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second,
		Temperature:    cfg.Ollama.Temperature,
		ResponseLength: cfg.Ollama.ResponseLength,
		Logger:         logger,
	})
	if err := cls.Healthy(ctx); err != nil {
		logger.Warn("ollama unhealthy at startup, classifications will degrade to unknown", "err", err)
	} else {
		logger.Info("ollama healthy", "model", cfg.Ollama.Model)
	}

	var notifier workflow.Notifier
	if cfg.Notify.Telegram.Enabled {
		tg, err := notify.NewTelegram(notify.TelegramConfig{
			Token:  cfg.Notify.Telegram.Token,
			ChatID: cfg.Notify.Telegram.ChatID,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("telegram notifier: %w", err)
		}
		notifier = tg
	}

	router := workflow.NewRouter(workflow.RouterConfig{
		Notifier: notifier,
		Logger:   logger,
	})

	jobs := queue.New(cfg.Queue.BufferSize, logger)
	defer jobs.Close()

	pool := worker.NewPool(worker.PoolConfig{
		Queue: jobs,
		Processor: worker.NewProcessor(worker.ProcessorConfig{
			Classifier: cls,
			Store:      msgStore,
			Router:     router,
			Logger:     logger,
		}),
		Workers:     cfg.Queue.Workers,
		MaxAttempts: cfg.Queue.MaxAttempts,
		Logger:      logger,
	})
	go pool.Run(ctx)

	webhook := whatsapp.NewWebhook(whatsapp.WebhookConfig{
		Path:        cfg.Server.WebhookPath,
		VerifyToken: cfg.Server.VerifyToken,
		Queue:       jobs,
		Logger:      logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/", webhook.Handler())
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Endpoint, metrics.Collector.Handler())
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("webhook server starting",
		"addr", server.Addr,
		"path", cfg.Server.WebhookPath,
		"workers", cfg.Queue.Workers,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

func buildStore(cfg *config.Config) (domain.MessageStore, error) {
	if cfg.Storage.Backend == "sqlite" {
		return store.NewSQLite(cfg.Storage.DBPath, logger)
	}
	return store.NewLog(logger), nil
}
