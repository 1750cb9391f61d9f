package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/metrics"
	pkgAuth "github.com/polkiloo/adbroker/internal/pkg/auth"
	"github.com/polkiloo/adbroker/internal/server/http/handlers"
	"github.com/polkiloo/adbroker/internal/test/facades"
)

func newTestEngine(facade facades.MarketFacadeStub) *gin.Engine {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := Setup(facade, logger, metrics.New())
	gin.SetMode(gin.TestMode)
	return engine
}

func TestSetupRoutes(t *testing.T) {
	actor := model.Actor{UserID: uuid.New(), Role: model.RoleAdvertiser}
	facade := facades.MarketFacadeStub{
		AuthFacadeStub: facades.AuthFacadeStub{ParseFn: func(token string) (model.Actor, error) {
			if token != "token" {
				return model.Actor{}, pkgAuth.ErrInvalidToken
			}
			return actor, nil
		}},
		OrderFacadeStub: facades.OrderFacadeStub{OrdersFn: func(_ context.Context, a model.Actor) ([]model.Order, error) {
			if a != actor {
				t.Fatalf("unexpected actor %+v", a)
			}
			return []model.Order{{ID: uuid.New(), Status: model.OrderStatusPending}}, nil
		}},
	}
	engine := newTestEngine(facade)

	body, _ := json.Marshal(map[string]string{"login": "user", "password": "pass", "role": "ADVERTISER"})
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for register, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for orders, got %d", resp.Code)
	}
}

func TestSetupRegistersMarketplaceRoutes(t *testing.T) {
	engine := newTestEngine(facades.MarketFacadeStub{})

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/user/register",
		"POST /api/user/login",
		"GET /api/user/me",
		"GET /api/user/wallet",
		"POST /api/user/wallet/deposit",
		"POST /api/user/wallet/withdraw",
		"GET /api/user/wallet/transactions",
		"POST /api/orders",
		"GET /api/orders",
		"GET /api/orders/open",
		"GET /api/orders/stats",
		"GET /api/orders/:id",
		"DELETE /api/orders/:id",
		"POST /api/orders/:id/apply",
		"GET /api/orders/:id/applications",
		"POST /api/orders/:id/accept/:applicationId",
		"POST /api/orders/:id/complete",
		"POST /api/orders/:id/confirm",
		"POST /api/orders/:id/cancel",
		"POST /api/orders/:id/materials",
		"GET /api/orders/:id/materials",
		"GET /api/reviews/pending",
		"POST /api/reviews/:id",
		"POST /api/messages",
		"GET /api/messages",
		"GET /api/messages/conversations",
		"GET /api/messages/conversations/:contactId",
		"GET /api/messages/unread-count",
		"POST /api/messages/:id/read",
		"DELETE /api/messages/:id",
		"GET /api/notifications/stream",
		"GET /api/users/:id/online",
		"GET /healthz",
		"GET /metrics",
	} {
		if !registered[want] {
			t.Errorf("route %s not registered", want)
		}
	}
}

func TestSetupServesOpsEndpoints(t *testing.T) {
	engine := newTestEngine(facades.MarketFacadeStub{})

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "adbroker_http_requests_total") {
		t.Fatal("expected request counter after the healthz call")
	}
}

var _ handlers.MarketFacade = facades.MarketFacadeStub{}
