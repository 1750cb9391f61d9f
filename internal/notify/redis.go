package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// Envelope is the wire form of an event on the shared Redis channel.
type Envelope struct {
	UserID  string         `json:"userId"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

// Connect initializes a Redis client from URL or host:port input and checks it answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisSink publishes events so every instance can reach its locally connected users.
type RedisSink struct {
	client  *redis.Client
	channel string
	breaker *gobreaker.CircuitBreaker
}

// NewRedisSink constructs RedisSink.
func NewRedisSink(client *redis.Client, channel string, breaker *gobreaker.CircuitBreaker) *RedisSink {
	return &RedisSink{client: client, channel: channel, breaker: breaker}
}

// Notify implements Sink.
func (s *RedisSink) Notify(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error {
	body, err := json.Marshal(Envelope{UserID: userID.String(), Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Publish(ctx, s.channel, body).Err()
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

// Relay subscribes to the shared channel and hands every event to the local sink.
type Relay struct {
	client  *redis.Client
	channel string
	local   Sink
	logger  *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewRelay constructs Relay.
func NewRelay(client *redis.Client, channel string, local Sink, logger *slog.Logger) *Relay {
	return &Relay{client: client, channel: channel, local: local, logger: logger}
}

// Start subscribes and forwards in the background. It returns once the subscription is confirmed.
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go r.forward(runCtx, pubsub)
	return nil
}

// Stop unsubscribes and waits for the forwarder to exit.
func (r *Relay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Relay) forward(ctx context.Context, pubsub *redis.PubSub) {
	defer r.wg.Done()
	defer pubsub.Close()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			r.handle(ctx, msg.Payload)
		}
	}
}

func (r *Relay) handle(ctx context.Context, raw string) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		r.logger.Warn("malformed relay message", slog.String("error", err.Error()))
		return
	}
	userID, err := uuid.Parse(env.UserID)
	if err != nil {
		r.logger.Warn("relay message without user", slog.String("event", env.Event))
		return
	}
	if err := r.local.Notify(ctx, userID, env.Event, env.Payload); err != nil {
		r.logger.Error("relay delivery failed", slog.String("event", env.Event), slog.String("error", err.Error()))
	}
}
