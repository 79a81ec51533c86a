package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/screencoach/internal/app"
	"github.com/pscheid92/screencoach/internal/config"
	"github.com/pscheid92/screencoach/internal/domain"
	"github.com/pscheid92/screencoach/internal/engine"
	"github.com/pscheid92/screencoach/internal/logging"
	"github.com/pscheid92/screencoach/internal/notify"
	"github.com/pscheid92/screencoach/internal/redis"
	"github.com/pscheid92/screencoach/internal/server"
	"github.com/pscheid92/screencoach/internal/source"
	ws "github.com/pscheid92/screencoach/internal/websocket"
	goredis "github.com/redis/go-redis/v9"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupLedger(ctx context.Context, client *goredis.Client, clock clockwork.Clock, retentionDays int) *redis.Ledger {
	ledger := redis.NewLedger(client, clock)
	if err := ledger.Init(ctx); err != nil {
		slog.Error("Failed to initialize ledger", "error", err)
		os.Exit(1)
	}
	if err := ledger.PruneOlderThan(ctx, retentionDays); err != nil {
		slog.Warn("Failed to prune old records", "error", err)
	}
	return ledger
}

func setupNotifier(cfg *config.Config) domain.Notifier {
	if cfg.NotifyWebhookURL != "" {
		return notify.NewWebhook(cfg.NotifyWebhookURL)
	}
	slog.Info("No notification webhook configured, logging notifications instead")
	return notify.Log{}
}

func runGracefulShutdown(cancel context.CancelFunc, srv *server.Server, timers *engine.TimerManager, broadcaster *ws.StatusBroadcaster) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancel()
		broadcaster.Stop()
		timers.Shutdown()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := setupRedis(ctx, cfg)
	defer func() { _ = redisClient.Close() }()

	ledger := setupLedger(ctx, redisClient, clock, cfg.RetentionDays)
	notifier := setupNotifier(cfg)
	usageSource := source.NewProcessSource(clock)

	// Engine wiring. The timer manager needs the scheduler to exist for its
	// expiry callback, and the scheduler needs the timer manager; the closure
	// breaks the cycle.
	accumulator := engine.NewAccumulator()
	var scheduler *engine.BreakScheduler
	timers := engine.NewTimerManager(clock, func(packageName string) {
		scheduler.TriggerBreak(packageName, domain.BreakOriginTimer)
	})
	scheduler = engine.NewBreakScheduler(ledger, notifier, clock, timers, accumulator)
	streaks := engine.NewStreakEvaluator(ledger, clock)
	syncer := engine.NewSyncer(ledger, usageSource, notifier, clock, engine.NewReconciler(), accumulator, scheduler)

	service := app.NewService(ledger, usageSource, clock, timers, scheduler, streaks, syncer)
	broadcaster := ws.NewStatusBroadcaster(service, clock)
	scheduler.SetOnChange(broadcaster.Push)

	go syncer.Run(ctx)

	srv := server.NewServer(cfg, service, broadcaster, redisClient, clock)
	done := runGracefulShutdown(cancel, srv, timers, broadcaster)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}
