package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/TAKIS21345/techsteps-sub005/internal/control"
	"github.com/TAKIS21345/techsteps-sub005/internal/core/config"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/connectivity"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/queue"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/session"
	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/strategy"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "resilienced",
	Short: "Error recovery service",
	Long:  `Resilienced keeps client sessions, queued actions, and recovery strategies durable across failures and offline periods.`,
	Run:   runService,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func runService(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	app, err := control.NewService(controlConfig(cfg))
	if err != nil {
		slog.Error("Failed to initialize service", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start service", "error", err)
		os.Exit(1)
	}

	slog.Info("Service started", "config", cfgPath)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}

func controlConfig(cfg *config.AppConfig) control.Config {
	return control.Config{
		Port:     cfg.Server.Port,
		Redis:    cfg.Redis,
		Database: cfg.Database,
		Connectivity: connectivity.Config{
			ProbeAddr: cfg.Connectivity.ProbeAddr,
			Interval:  cfg.Connectivity.Interval.Std(),
			Timeout:   cfg.Connectivity.Timeout.Std(),
		},
		Session: session.Config{
			SaveInterval: cfg.Session.SaveInterval.Std(),
			MaxAge:       cfg.Session.MaxAge.Std(),
		},
		Queue: queue.Config{
			MaxRetries: cfg.Queue.MaxRetries,
		},
		Strategy: strategy.Config{
			HandlerTimeout: cfg.Recovery.HandlerTimeout.Std(),
		},
		MemoryLimitBytes:    cfg.Recovery.MemoryLimitBytes,
		MemoryCheckInterval: cfg.Recovery.MemoryCheckInterval.Std(),
	}
}
