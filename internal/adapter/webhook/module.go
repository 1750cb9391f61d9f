package webhook

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/adbroker/internal/config"
	"github.com/polkiloo/adbroker/internal/metrics"
	"github.com/polkiloo/adbroker/internal/notify"
)

// Module exposes the webhook client to fx graph. It is nil when no URL is configured.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func newClient(p clientParams) (*Client, error) {
	if p.Config.WebhookURL == "" {
		return nil, nil
	}
	return NewClient(p.Config.WebhookURL, notify.NewBreaker("webhook", p.Logger, p.Metrics), p.Logger)
}
