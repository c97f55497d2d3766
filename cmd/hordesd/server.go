package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bixgamer707/hordes/internal/config"
	"github.com/bixgamer707/hordes/internal/cooldown"
	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/gateway"
	"github.com/bixgamer707/hordes/internal/handlers/adminv1"
	"github.com/bixgamer707/hordes/internal/messages"
	"github.com/bixgamer707/hordes/internal/pkg/clock"
	"github.com/bixgamer707/hordes/internal/pkg/idgen"
	"github.com/bixgamer707/hordes/internal/pkg/scheduler"
	redisclient "github.com/bixgamer707/hordes/internal/redis"
	"github.com/bixgamer707/hordes/internal/registry"
	"github.com/bixgamer707/hordes/internal/repositories/statistics"
	"github.com/bixgamer707/hordes/internal/spawn"
	"github.com/bixgamer707/hordes/internal/stats"
)

var (
	listenAddr  string
	redisAddr   string
	configDir   string
	watchConfig bool
	logLevel    string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the sidecar server",
	Long:  `Start the HTTP server hosting the engine websocket and the admin API.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address")
	serverCmd.Flags().StringVar(&redisAddr, "redis", "", "Redis endpoint for statistics (empty keeps stats in memory)")
	serverCmd.Flags().StringVar(&configDir, "config-dir", "config", "directory holding arenas.yaml and messages.yaml")
	serverCmd.Flags().BoolVar(&watchConfig, "watch-config", false, "reload configuration when the files change on disk")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func runServer(cmd *cobra.Command, args []string) error {
	setupLogging()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	store, err := config.NewStore(configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	renderer := messages.NewTemplateRenderer(store.Templates())
	g := gateway.New()

	coordinator, err := spawn.NewCoordinator(&spawn.Config{
		Backends: map[entities.SpawnBackend]spawn.Backend{
			entities.BackendVanilla: g.VanillaBackend(),
			entities.BackendMythic:  spawn.NewMythicBackend(g.MythicDelegate(), g.MythicAvailable),
		},
		IDGenerator: idgen.NewUUID("mob-"),
	})
	if err != nil {
		return fmt.Errorf("failed to create spawn coordinator: %w", err)
	}

	var statsRepo statistics.Repository
	if redisAddr != "" {
		client, err := redisclient.NewClient(redisAddr, nil)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		statsRepo, err = statistics.NewRedisRepository(&statistics.Config{Client: client})
		if err != nil {
			return fmt.Errorf("failed to create statistics repository: %w", err)
		}
	} else {
		slog.Warn("no redis endpoint configured, statistics will not survive restarts")
		statsRepo = statistics.NewInMemory()
	}

	recorder, err := stats.NewAsyncRecorder(&stats.Config{Repository: statsRepo})
	if err != nil {
		return fmt.Errorf("failed to create statistics recorder: %w", err)
	}

	clk := clock.New()
	sched := scheduler.NewReal()
	cooldowns := cooldown.NewLedger(clk)
	sweep := sched.Every(time.Minute, func() {
		if removed := cooldowns.CleanupExpired(); removed > 0 {
			slog.Debug("swept expired cooldowns", "removed", removed)
		}
	})
	defer sweep.Cancel()

	reg, err := registry.New(&registry.Config{
		Engine:      g,
		Messenger:   g,
		Permissions: g,
		Rewards:     g,
		Renderer:    renderer,
		Spawner:     coordinator,
		Cooldowns:   cooldowns,
		Stats:       recorder,
		Scheduler:   sched,
		Clock:       clk,
	})
	if err != nil {
		return fmt.Errorf("failed to create arena registry: %w", err)
	}
	reg.Load(store.Arenas())
	g.Attach(reg)

	applyConfig := func() {
		renderer.Swap(store.Templates())
		reg.Reload(store.Arenas())
	}

	adminHandler, err := adminv1.NewHandler(&adminv1.Config{
		Registry: reg,
		Reload: func() error {
			if err := store.Reload(); err != nil {
				return err
			}
			applyConfig()
			return nil
		},
		EngineConnected: g.Connected,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin handler: %w", err)
	}

	mux := http.NewServeMux()
	adminHandler.Register(mux)
	mux.Handle("/ws/engine", g)

	if watchConfig {
		go func() {
			if err := store.Watch(ctx, applyConfig); err != nil {
				slog.Error("config watcher stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("server starting", "listen", listenAddr, "config_dir", configDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown did not complete cleanly", "error", err)
		}

		// Evict every participant so inventories and locations are restored
		// before the process exits.
		reg.Shutdown()

		if err := recorder.Close(shutdownCtx); err != nil {
			slog.Warn("statistics recorder did not drain", "error", err)
		}

		slog.Info("server stopped")
		return nil
	case err := <-errChan:
		return err
	}
}

func setupLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
