// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-asteroids/pkg/config"
	"github.com/opd-ai/go-asteroids/pkg/engine"
	"github.com/opd-ai/go-asteroids/pkg/event"
	"github.com/opd-ai/go-asteroids/pkg/health"
	"github.com/opd-ai/go-asteroids/pkg/logging"
	"github.com/opd-ai/go-asteroids/pkg/network"
	"github.com/opd-ai/go-asteroids/pkg/resource"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", *configPath)
		return
	}

	gameConfig, err := loadGameConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}
	if err := config.ApplyEnvironmentOverrides(gameConfig); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}
	env, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Invalid environment configuration", err)
		os.Exit(1)
	}

	bus := event.NewEventBus()
	game, err := engine.New(gameConfig, engine.WithEventBus(bus), engine.WithLogger(logger))
	if err != nil {
		logger.Error(ctx, "Failed to create engine", err)
		os.Exit(1)
	}

	resources := resource.NewManager(env, logger)
	if err := resources.Start(); err != nil {
		logger.Error(ctx, "Failed to start resource monitor", err)
		os.Exit(1)
	}

	server, err := network.NewServer(game, env,
		network.WithServerLogger(logger),
		network.WithResources(resources),
	)
	if err != nil {
		logger.Error(ctx, "Failed to create server", err)
		os.Exit(1)
	}

	// Probes share the game listener; a stalled tick loop fails readiness
	// after a few missed seconds.
	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewGameEngineHealthCheck(server.Running, game.LastTick, env.ReadTimeout))
	healthChecker.AddCheck(health.NewNetworkHealthCheck(server.ListenerAddress))
	healthChecker.AddCheck(resource.NewHealthCheck(resources))
	server.Handle("/health", http.HandlerFunc(healthChecker.LivenessHandler))
	server.Handle("/ready", http.HandlerFunc(healthChecker.ReadinessHandler))

	addr := gameConfig.NetworkConfig.Address
	logger.Info(ctx, "Starting server",
		"address", addr,
		"max_clients", gameConfig.NetworkConfig.MaxClients,
		"world_width", gameConfig.World.Width,
		"world_height", gameConfig.World.Height,
	)
	if err := server.Start(addr); err != nil {
		logger.Error(ctx, "Failed to start server", err, "address", addr)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown failed", err)
	}
	if err := resources.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Resource shutdown failed", err)
	}
	stats := game.Stats()
	logger.Info(ctx, "Server stopped", "ticks", stats.Tick, "rounds", stats.Rounds)
}

func loadGameConfig(ctx context.Context, logger *logging.Logger, path string) (*config.GameConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration", "config_path", path)
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}
