package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/adbroker/internal/adapter/webhook"
	"github.com/polkiloo/adbroker/internal/config"
	"github.com/polkiloo/adbroker/internal/metrics"
	"github.com/polkiloo/adbroker/internal/notify"
	"github.com/polkiloo/adbroker/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewMarketFacade,
		newHTTPServer,
		newSink,
		newDispatcher,
		newEventPublisher,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type sinkParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Hub     *notify.Hub
	Redis   *redis.Client
	Webhook *webhook.Client
}

// newSink picks where committed events go. With Redis configured the local hub is fed by
// the relay, so events are published to the channel instead of the hub directly.
func newSink(p sinkParams) notify.Sink {
	var sinks notify.Fanout
	if p.Redis != nil {
		breaker := notify.NewBreaker("redis", p.Logger, p.Metrics)
		sinks = append(sinks, notify.NewRedisSink(p.Redis, p.Config.RedisChannel, breaker))
	} else {
		sinks = append(sinks, p.Hub)
	}
	if p.Webhook != nil {
		sinks = append(sinks, p.Webhook)
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return sinks
}

type dispatcherParams struct {
	fx.In

	Sink    notify.Sink
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func newDispatcher(p dispatcherParams) *worker.Dispatcher {
	return worker.NewDispatcher(
		p.Sink,
		p.Config.NotifyWorkers,
		p.Config.NotifyQueueSize,
		p.Config.NotifyTimeout,
		p.Logger,
		p.Metrics,
	)
}

func newEventPublisher(d *worker.Dispatcher) EventPublisher {
	return d
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Dispatcher *worker.Dispatcher
	Hub        *notify.Hub
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting adbroker", slog.String("addr", p.Server.Addr))
			p.Dispatcher.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Open notification streams only end once their channels close.
			p.Hub.Close()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Dispatcher.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("adbroker stopped")
			return nil
		},
	})
}
