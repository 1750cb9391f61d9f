package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/adbroker/internal/adapter/webhook"
	"github.com/polkiloo/adbroker/internal/app"
	"github.com/polkiloo/adbroker/internal/config"
	"github.com/polkiloo/adbroker/internal/logger"
	"github.com/polkiloo/adbroker/internal/metrics"
	"github.com/polkiloo/adbroker/internal/notify"
	"github.com/polkiloo/adbroker/internal/pkg/auth"
	"github.com/polkiloo/adbroker/internal/server/http/handlers"
	"github.com/polkiloo/adbroker/internal/server/http/router"
	"github.com/polkiloo/adbroker/internal/storage"
	"github.com/polkiloo/adbroker/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		storage.Module,
		usecase.Module,
		notify.Module,
		webhook.Module,
		fx.Provide(func(f *app.MarketFacade) handlers.MarketFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
