package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/cascade-detect/internal/artifact"
	"github.com/eleven-am/cascade-detect/internal/respond"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// ProvideRedisClient returns nil in inline mode, where nothing is published.
func ProvideRedisClient(lc fx.Lifecycle, cfg *Config) *redis.Client {
	if respond.ParseMode(cfg.DeliveryMode) != respond.ModeURL {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func ProvideScratch(cfg *Config, logger *slog.Logger) (*artifact.Scratch, error) {
	return artifact.NewScratch(cfg.ScratchDir, logger)
}

func ProvideRegistry(client *redis.Client, cfg *Config) *artifact.Registry {
	if client == nil {
		return nil
	}
	return artifact.NewRegistry(client, cfg.ArtifactTTL)
}

func ProvideJanitor(registry *artifact.Registry, cfg *Config, logger *slog.Logger) *artifact.Janitor {
	if registry == nil {
		return nil
	}
	return artifact.NewJanitor(registry, cfg.JanitorInterval, logger)
}

func StartJanitor(lc fx.Lifecycle, janitor *artifact.Janitor, logger *slog.Logger) {
	if janitor == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("artifact janitor starting")
			janitor.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return janitor.Stop(ctx)
		},
	})
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideScratch,
		ProvideRegistry,
		ProvideJanitor,
	),
	fx.Invoke(StartJanitor),
)
