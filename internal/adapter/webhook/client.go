package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/polkiloo/adbroker/internal/notify"
)

// TooManyRequestsError represents rate limiting signal from the receiver.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client posts every event to an external HTTP endpoint.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates webhook client with default timeout.
func NewClient(endpoint string, breaker *gobreaker.CircuitBreaker, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse webhook url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("webhook url must be absolute")
	}
	return &Client{
		endpoint: parsed,
		breaker:  breaker,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Notify implements notify.Sink.
func (c *Client) Notify(ctx context.Context, userID uuid.UUID, event string, payload map[string]any) error {
	body, err := json.Marshal(notify.Envelope{UserID: userID.String(), Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode webhook: %w", err)
	}
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.post(ctx, event, body)
	})
	return err
}

func (c *Client) post(ctx context.Context, event string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event", event)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("webhook request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(msg)))
		return fmt.Errorf("webhook error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
