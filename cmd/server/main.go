package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kprao/rummyscore/internal/api"
	"github.com/kprao/rummyscore/internal/config"
	"github.com/kprao/rummyscore/internal/factory"
	natsgw "github.com/kprao/rummyscore/internal/syncgw/nats"
	redisgw "github.com/kprao/rummyscore/internal/syncgw/redis"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (env: RUMMY_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// Build factory config
	factoryCfg := factory.Config{
		Logger:      logger,
		GatewayType: cfg.Gateway.Type,
	}

	switch cfg.Gateway.Type {
	case factory.GatewayTypeRedis:
		redisCfg := redisgw.DefaultConfig()
		redisCfg.URL = cfg.Gateway.Redis.URL
		if cfg.Gateway.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Gateway.Redis.PoolSize
		}
		if cfg.Gateway.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Gateway.Redis.MinIdleConns
		}
		if cfg.Gateway.Redis.GameTTL > 0 {
			redisCfg.GameTTL = cfg.Gateway.Redis.GameTTL
		}
		factoryCfg.RedisConfig = &redisCfg
	case factory.GatewayTypeNATS:
		natsCfg := natsgw.DefaultConfig()
		if cfg.Gateway.NATS.URL != "" {
			natsCfg.URL = cfg.Gateway.NATS.URL
		}
		natsCfg.MaxReconnects = cfg.Gateway.NATS.MaxReconnects
		factoryCfg.NATSConfig = &natsCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Gateway:    app.Gateway,
		HubManager: app.HubManager,
		Clock:      app.Clock,
		Random:     app.Random,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("gateway", cfg.Gateway.Type))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
