package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	invapp "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeInventory struct{}

func (fakeInventory) ReserveInventory(_ context.Context, req invapp.ReserveInventoryRequest) (*invapp.ReserveInventoryResult, error) {
	return &invapp.ReserveInventoryResult{Success: true, OrderID: req.OrderID, ReservationIDs: []uuid.UUID{uuid.New()}}, nil
}

func (fakeInventory) ConfirmReservation(_ context.Context, orderID string) (*invapp.TransitionResult, error) {
	return &invapp.TransitionResult{Success: true, OrderID: orderID, Outcome: invapp.TransitionApplied}, nil
}

func (fakeInventory) CancelReservation(_ context.Context, orderID string) (*invapp.TransitionResult, error) {
	return &invapp.TransitionResult{OrderID: orderID, Outcome: invapp.TransitionAlreadyProcessed}, nil
}

func (fakeInventory) ListOrderReservations(context.Context, string) ([]invapp.ReservationResponse, error) {
	return nil, nil
}

func (fakeInventory) GetAvailableStock(_ context.Context, ids []uuid.UUID) ([]inventory.StockAvailability, error) {
	out := make([]inventory.StockAvailability, len(ids))
	for i, id := range ids {
		out[i] = inventory.StockAvailability{SKUID: id, TotalStock: 3, AvailableStock: 3}
	}
	return out, nil
}

func (fakeInventory) CleanupExpiredReservations(context.Context) (*invapp.CleanupResult, error) {
	return &invapp.CleanupResult{CleanedCount: 1}, nil
}

func (fakeInventory) ArchiveZeroStockProducts(context.Context) (*invapp.ArchiveResult, error) {
	return &invapp.ArchiveResult{}, nil
}

type okProbe struct{}

func (okProbe) Ping() error { return nil }

func (okProbe) Stats() (persistence.ConnectionStats, error) { return persistence.ConnectionStats{}, nil }

func testHandlers() Handlers {
	f := fakeInventory{}
	return Handlers{
		Reservation:  handler.NewReservationHandler(f),
		Availability: handler.NewAvailabilityHandler(f),
		Maintenance:  handler.NewMaintenanceHandler(f, f),
		Health:       handler.NewHealthHandler(okProbe{}, "test"),
	}
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Enabled:         true,
		Secret:          "0123456789abcdef0123456789abcdef",
		Issuer:          "inventory-test",
		TokenExpiration: time.Hour,
	})
}

func serve(engine http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewEngine_OpenRoutes(t *testing.T) {
	engine, err := NewEngine(EngineConfig{
		ServiceName:    "inventory",
		MaxBodySize:    1 << 20,
		RequestTimeout: 5 * time.Second,
		Logger:         zaptest.NewLogger(t),
	}, testHandlers())
	require.NoError(t, err)

	t.Run("health", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("readiness", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/health/ready", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("request id is propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "abc-123", resp.Error.RequestID)
	})

	t.Run("reserve without auth configured", func(t *testing.T) {
		body := `{"order_id":"ORD-1","items":[{"sku_id":"` + uuid.NewString() + `","quantity":1}]}`
		w := serve(engine, http.MethodPost, "/api/v1/reservations", "", body)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("cancel twice reports conflict", func(t *testing.T) {
		w := serve(engine, http.MethodPost, "/api/v1/reservations/orders/ORD-1/cancel", "", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("swagger disabled", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/swagger/index.html", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestNewEngine_ServiceAuth(t *testing.T) {
	jwtSvc := newTestJWT()
	engine, err := NewEngine(EngineConfig{
		ServiceName: "inventory",
		JWT:         jwtSvc,
		Logger:      zaptest.NewLogger(t),
	}, testHandlers())
	require.NoError(t, err)

	reserveTok, err := jwtSvc.IssueServiceToken("orders", auth.ScopeReserve)
	require.NoError(t, err)
	maintTok, err := jwtSvc.IssueServiceToken("sweeper", auth.ScopeMaintenance)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health stays open", http.MethodGet, "/health", "", http.StatusOK},
		{"confirm needs a token", http.MethodPost, "/api/v1/reservations/orders/ORD-1/confirm", "", http.StatusUnauthorized},
		{"confirm with reserve scope", http.MethodPost, "/api/v1/reservations/orders/ORD-1/confirm", reserveTok.Token, http.StatusOK},
		{"availability with reserve scope", http.MethodGet, "/api/v1/inventory/availability?sku_ids=" + uuid.NewString(), reserveTok.Token, http.StatusOK},
		{"availability with maintenance scope", http.MethodGet, "/api/v1/inventory/availability?sku_ids=" + uuid.NewString(), maintTok.Token, http.StatusForbidden},
		{"cleanup with reserve scope", http.MethodPost, "/api/v1/maintenance/reservations/cleanup", reserveTok.Token, http.StatusForbidden},
		{"cleanup with maintenance scope", http.MethodPost, "/api/v1/maintenance/reservations/cleanup", maintTok.Token, http.StatusOK},
		{"archive with maintenance scope", http.MethodPost, "/api/v1/maintenance/products/archive", maintTok.Token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestNewEngine_RateLimit(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)

	engine, err := NewEngine(EngineConfig{RateLimiter: limiter}, testHandlers())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodGet, "/health", "", "").Code)
}

func TestNewEngine_BadTrustedProxy(t *testing.T) {
	_, err := NewEngine(EngineConfig{TrustedProxies: []string{"not-an-ip"}}, testHandlers())
	assert.Error(t, err)
}
