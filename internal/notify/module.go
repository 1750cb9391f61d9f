package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/adbroker/internal/config"
)

const connectTimeout = 5 * time.Second

// Module provides the presence hub and, when configured, the shared Redis client.
var Module = fx.Options(
	fx.Provide(NewHub, newRedisClient),
	fx.Invoke(registerLifecycle),
)

type redisParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

var connectRedis = Connect

// newRedisClient returns nil when no Redis address is configured.
func newRedisClient(p redisParams) (*redis.Client, error) {
	if p.Config.RedisAddress == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(p.Ctx, connectTimeout)
	defer cancel()

	client, err := connectRedis(ctx, p.Config.RedisAddress)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("redis notification fan-out enabled", slog.String("channel", p.Config.RedisChannel))
	return client, nil
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
	Hub       *Hub
	Redis     *redis.Client
}

func registerLifecycle(p lifecycleParams) {
	var relay *Relay
	if p.Redis != nil {
		relay = NewRelay(p.Redis, p.Config.RedisChannel, p.Hub, p.Logger)
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if relay == nil {
				return nil
			}
			return relay.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			if relay != nil {
				relay.Stop()
			}
			p.Hub.Close()
			if p.Redis != nil {
				return p.Redis.Close()
			}
			return nil
		},
	})
}
