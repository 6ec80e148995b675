package orders

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/packfinderz-client/internal/cart"
	"github.com/angelmondragon/packfinderz-client/internal/store"
	"github.com/angelmondragon/packfinderz-client/internal/transport"
	"github.com/angelmondragon/packfinderz-client/pkg/config"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	st, err := store.Open(context.Background(), config.StoreConfig{
		Path: filepath.Join(t.TempDir(), "client.db"),
	}, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log, err := NewLog(st, logg)
	require.NoError(t, err)
	return log
}

func TestNewLocalIDIsCollisionResistant(t *testing.T) {
	now := time.Now()
	a := NewLocalID("ord-1", now)
	b := NewLocalID("ord-1", now.Add(time.Nanosecond))
	require.NotEqual(t, a, b, "same remote id at different instants must differ")
}

func TestAppendAndHistoryNewestFirst(t *testing.T) {
	log := newTestLog(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	older := Order{LocalID: "a-1", OrderID: "a", Status: StatusProcessing, CreatedAt: base}
	newer := Order{LocalID: "b-2", OrderID: "b", Status: StatusProcessing, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, log.Append(ctx, older))
	require.NoError(t, log.Append(ctx, newer))

	history, err := log.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "b-2", history[0].LocalID)
	require.Equal(t, "a-1", history[1].LocalID)
}

func TestUpdateStatus(t *testing.T) {
	log := newTestLog(t)
	ctx := context.Background()

	order := Order{
		LocalID:   "a-1",
		OrderID:   "a",
		Items:     []cart.Item{{ID: "p1", Quantity: 2}},
		Status:    StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, log.Append(ctx, order))
	require.NoError(t, log.UpdateStatus(ctx, "a-1", StatusDelivered))

	got, err := log.Get(ctx, "a-1")
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, got.Status)
	require.Len(t, got.Items, 1, "items snapshot is untouched by status transitions")
}

func TestParseStatus(t *testing.T) {
	require.Equal(t, StatusDelivered, ParseStatus("Delivered"))
	require.Equal(t, StatusCancelled, ParseStatus(" cancelled "))
	require.Equal(t, StatusProcessing, ParseStatus("shipped-ish"))
}

func TestRefreshStatusUpdatesFromRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/ord-9", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"delivered"}`))
	}))
	defer server.Close()

	log := newTestLog(t)
	ctx := context.Background()
	require.NoError(t, log.Append(ctx, Order{LocalID: "ord-9-1", OrderID: "ord-9", Status: StatusProcessing, CreatedAt: time.Now()}))

	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	client, err := transport.NewClient(
		config.APIConfig{BaseURL: server.URL, RequestTimeout: time.Second},
		config.RetryConfig{MaxGetRetries: 1, RetryDelay: time.Millisecond},
		logg,
	)
	require.NoError(t, err)

	svc, err := NewService(log, client, logg)
	require.NoError(t, err)

	result := svc.RefreshStatus(ctx, "ord-9-1")
	require.True(t, result.Success)
	require.Equal(t, StatusDelivered, result.Data.Status)

	stored, err := log.Get(ctx, "ord-9-1")
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, stored.Status)
}

func TestRefreshStatusSkipsSynthesizedOrders(t *testing.T) {
	log := newTestLog(t)
	ctx := context.Background()
	require.NoError(t, log.Append(ctx, Order{
		LocalID: "local-x-1", OrderID: "local-x", Status: StatusProcessing,
		LocalFallback: true, CreatedAt: time.Now(),
	}))

	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	client, err := transport.NewClient(
		config.APIConfig{BaseURL: "http://127.0.0.1:0", RequestTimeout: time.Second},
		config.RetryConfig{},
		logg,
	)
	require.NoError(t, err)

	svc, err := NewService(log, client, logg)
	require.NoError(t, err)

	result := svc.RefreshStatus(ctx, "local-x-1")
	require.True(t, result.Success, "no network call is made for synthesized orders")
	require.Equal(t, StatusProcessing, result.Data.Status)
}
