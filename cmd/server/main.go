package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chatrelay/internal/hub"
	"github.com/pscheid92/chatrelay/internal/metrics"
	"github.com/pscheid92/chatrelay/internal/platform/config"
	"github.com/pscheid92/chatrelay/internal/platform/logging"
	"github.com/pscheid92/chatrelay/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// hubHealthCheck probes the hub registry. A wedged registry lock blocks the
// probe goroutine and the check reports unhealthy once ctx expires.
func hubHealthCheck(chatHub *hub.Hub) server.HealthCheck {
	return server.HealthCheck{
		Name: "hub",
		Check: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				chatHub.GetClientCount()
				close(done)
			}()

			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return fmt.Errorf("hub registry unresponsive: %w", ctx.Err())
			}
		},
	}
}

func runGracefulShutdown(srv *server.Server, chatHub *hub.Hub, timeout time.Duration) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		// One timeout covers both phases: stop accepting HTTP, then close
		// the chat connections and drain their pumps.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := chatHub.Shutdown(shutdownCtx); err != nil {
			slog.Error("Hub shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(slog.Default().With("instance_id", uuid.NewString()[:8]))
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	reg := metrics.NewRegistry()
	chatMetrics := metrics.NewChatMetrics(reg)
	chatHub := hub.New(hub.StaticName(cfg.DisplayName), clock, chatMetrics)

	checks := []server.HealthCheck{hubHealthCheck(chatHub)}
	srv, err := server.NewServer(cfg, chatHub, reg, checks)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, chatHub, cfg.ShutdownTimeout)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
