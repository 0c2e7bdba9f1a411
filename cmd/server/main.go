package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hikari-games/foxden-server/internal/api"
	"github.com/hikari-games/foxden-server/internal/config"
	"github.com/hikari-games/foxden-server/internal/factory"
	"github.com/hikari-games/foxden-server/internal/services/auth"
	filestorage "github.com/hikari-games/foxden-server/internal/storage/file"
	redisstorage "github.com/hikari-games/foxden-server/internal/storage/redis"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("failed to load config", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cfg = loaded
	}

	// Build factory config
	factoryCfg := factory.Config{
		Logger:        logger,
		StorageType:   cfg.Storage.Backend,
		AuthConfig:    auth.Config{SessionTTL: cfg.Sessions.TTL},
		SweepInterval: cfg.Sessions.SweepInterval,
	}

	switch cfg.Storage.Backend {
	case factory.StorageTypeFile:
		fileCfg := filestorage.DefaultConfig()
		fileCfg.Dir = cfg.Storage.File.Dir
		factoryCfg.FileConfig = &fileCfg
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.Redis.URL
		if cfg.Storage.Redis.PoolSize != 0 {
			redisCfg.PoolSize = cfg.Storage.Redis.PoolSize
		}
		if cfg.Storage.Redis.MinIdleConns != 0 {
			redisCfg.MinIdleConns = cfg.Storage.Redis.MinIdleConns
		}
		if cfg.Storage.Redis.DialTimeout != 0 {
			redisCfg.DialTimeout = cfg.Storage.Redis.DialTimeout
		}
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Dispatcher: app.Dispatcher,
		StartedAt:  app.Clock.Now(),
		StaticDir:  cfg.Server.StaticDir,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.ListenAddr
	serverConfig.Port = cfg.Server.HTTPPort
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

	// Purge expired sessions in the background
	go app.RunSessionSweeper(ctx)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Backend))

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
