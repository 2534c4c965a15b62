package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invapp "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockReservations struct {
	mock.Mock
}

func (m *mockReservations) ReserveInventory(ctx context.Context, req invapp.ReserveInventoryRequest) (*invapp.ReserveInventoryResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invapp.ReserveInventoryResult), args.Error(1)
}

func (m *mockReservations) ConfirmReservation(ctx context.Context, orderID string) (*invapp.TransitionResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invapp.TransitionResult), args.Error(1)
}

func (m *mockReservations) CancelReservation(ctx context.Context, orderID string) (*invapp.TransitionResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invapp.TransitionResult), args.Error(1)
}

func (m *mockReservations) ListOrderReservations(ctx context.Context, orderID string) ([]invapp.ReservationResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invapp.ReservationResponse), args.Error(1)
}

type mockAvailability struct {
	mock.Mock
}

func (m *mockAvailability) GetAvailableStock(ctx context.Context, skuIDs []uuid.UUID) ([]inventory.StockAvailability, error) {
	args := m.Called(ctx, skuIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockAvailability), args.Error(1)
}

type mockMaintenance struct {
	mock.Mock
}

func (m *mockMaintenance) CleanupExpiredReservations(ctx context.Context) (*invapp.CleanupResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invapp.CleanupResult), args.Error(1)
}

func (m *mockMaintenance) ArchiveZeroStockProducts(ctx context.Context) (*invapp.ArchiveResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invapp.ArchiveResult), args.Error(1)
}

type stubProbe struct {
	pingErr error
	stats   persistence.ConnectionStats
}

func (s stubProbe) Ping() error { return s.pingErr }

func (s stubProbe) Stats() (persistence.ConnectionStats, error) { return s.stats, nil }

// envelope mirrors dto.Response with raw data for per-test decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func perform(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}
