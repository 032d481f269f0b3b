package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/carecall/care-gateway/config"
	"github.com/carecall/care-gateway/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting care gateway",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"store_backend", cfg.Store.Backend,
		"delivery_provider", cfg.Delivery.Provider,
		"backend_url", cfg.HTTP.BackendURL)

	redisClient, err := connectStoreRedis(&cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	auth, err := bootstrap.BuildAuthServices(bootstrap.AuthBuildConfig{
		Config:      &cfg,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server, err := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Config: &cfg,
		Auth:   auth,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.WaitForShutdown(server, logger)
}

// connectStoreRedis connects Redis only when the pending store needs it.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func connectStoreRedis(cfg *config.AppConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	if cfg.Store.Backend != config.StoreRedis {
		return nil, nil
	}

	client, err := bootstrap.ConnectRedis(bootstrap.RedisConnectConfig{
		Redis:  cfg.Redis,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
