package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/adbroker/internal/adapter/webhook"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/metrics"
	"github.com/polkiloo/adbroker/internal/notify"
)

// Dispatcher delivers committed events to a sink through a bounded queue served by a pool of workers.
// Publishing never blocks: when the queue is full the event is dropped and counted.
type Dispatcher struct {
	sink    notify.Sink
	timeout time.Duration
	workers int
	logger  *slog.Logger
	metrics *metrics.Metrics

	jobs    chan model.Event
	base    context.Context
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
	drained bool
}

// NewDispatcher constructs event dispatcher worker pool.
func NewDispatcher(sink notify.Sink, workers, queueSize int, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		sink:    sink,
		timeout: timeout,
		workers: workers,
		logger:  logger,
		metrics: m,
		jobs:    make(chan model.Event, queueSize),
		base:    context.Background(),
	}
}

// Start launches background delivery. A stopped dispatcher can be started again with an empty queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	if d.drained {
		d.jobs = make(chan model.Event, cap(d.jobs))
		d.drained = false
	}
	d.running = true
	d.base = context.WithoutCancel(ctx)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(d.jobs)
	}
}

// Stop refuses new events, delivers what is already queued and waits for workers to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.running {
		d.running = false
		d.drained = true
		close(d.jobs)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Publish queues events for delivery and returns how many were accepted.
func (d *Dispatcher) Publish(events ...model.Event) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	accepted := 0
	for _, ev := range events {
		if !d.running {
			d.drop(ev, "dispatcher stopped")
			continue
		}
		select {
		case d.jobs <- ev:
			accepted++
		default:
			d.drop(ev, "queue full")
		}
	}
	d.metrics.SetQueueDepth(len(d.jobs))
	return accepted
}

func (d *Dispatcher) drop(ev model.Event, reason string) {
	d.metrics.ObserveNotification(metrics.OutcomeDropped)
	d.logger.Warn("event dropped",
		slog.String("reason", reason),
		slog.String("event", ev.Name),
		slog.String("event_id", ev.ID.String()),
		slog.String("user_id", ev.UserID.String()))
}

func (d *Dispatcher) worker(jobs <-chan model.Event) {
	defer d.wg.Done()
	for ev := range jobs {
		d.metrics.SetQueueDepth(len(jobs))
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev model.Event) {
	ctx, cancel := context.WithTimeout(d.base, d.timeout)
	defer cancel()

	err := d.sink.Notify(ctx, ev.UserID, ev.Name, ev.Payload)
	if err == nil {
		d.metrics.ObserveNotification(metrics.OutcomeDelivered)
		return
	}
	d.metrics.ObserveNotification(metrics.OutcomeFailed)

	attrs := []any{
		slog.String("event", ev.Name),
		slog.String("event_id", ev.ID.String()),
		slog.String("user_id", ev.UserID.String()),
		slog.String("error", err.Error()),
	}
	var tooMany webhook.TooManyRequestsError
	if errors.As(err, &tooMany) {
		d.logger.Warn("event delivery rate limited", append(attrs, slog.Duration("retry_after", tooMany.RetryAfter))...)
		return
	}
	d.logger.Error("event delivery failed", attrs...)
}
