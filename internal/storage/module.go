// Package storage selects the repository backend configured for the process.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/adbroker/internal/config"
	"github.com/polkiloo/adbroker/internal/domain/repository"
	"github.com/polkiloo/adbroker/internal/storage/memory"
	"github.com/polkiloo/adbroker/internal/storage/postgres"
)

// Module wires the configured storage and its repository adapters.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(
		func(f repository.Factory) repository.UserRepository { return f.Users() },
		func(f repository.Factory) repository.OrderRepository { return f.Orders() },
		func(f repository.Factory) repository.ApplicationRepository { return f.Applications() },
		func(f repository.Factory) repository.MaterialRepository { return f.Materials() },
		func(f repository.Factory) repository.LedgerRepository { return f.Ledger() },
		func(f repository.Factory) repository.ReviewRepository { return f.Reviews() },
		func(f repository.Factory) repository.MessageRepository { return f.Messages() },
		func(f repository.Factory) repository.Transactor { return f.Transactor() },
	),
	fx.Invoke(registerLifecycle),
)

type factoryParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

var openPostgres = func(ctx context.Context, dsn string, logger *slog.Logger) (repository.Factory, error) {
	return postgres.New(ctx, dsn, logger)
}

func newFactory(p factoryParams) (repository.Factory, error) {
	switch p.Config.StorageDriver {
	case config.StorageMemory:
		p.Logger.Warn("using in-memory storage, state is lost on restart")
		return memory.New(), nil
	case config.StoragePostgres:
		return openPostgres(p.Ctx, p.Config.DatabaseURI, p.Logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", p.Config.StorageDriver)
	}
}

func registerLifecycle(lc fx.Lifecycle, factory repository.Factory) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			factory.Close()
			return nil
		},
	})
}
