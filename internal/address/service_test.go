package address

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/packfinderz-client/internal/store"
	"github.com/angelmondragon/packfinderz-client/internal/transport"
	"github.com/angelmondragon/packfinderz-client/pkg/config"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, serverURL string) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "address-test", Output: io.Discard})
	st, err := store.Open(context.Background(), config.StoreConfig{
		Path: filepath.Join(t.TempDir(), "client.db"),
	}, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	client, err := transport.NewClient(
		config.APIConfig{BaseURL: serverURL, RequestTimeout: time.Second},
		config.RetryConfig{MaxGetRetries: 0, RetryDelay: time.Millisecond},
		logg,
	)
	require.NoError(t, err)

	service, err := NewService(client, st, logg)
	require.NoError(t, err)
	return service
}

func TestListNormalizesAliasFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, transport.PathAddresses, r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"address_id": 7, "street": "12 High St", "pincode": "560001", "isShippingDefault": "true"},
			{"id": "srv-9", "addressLine": "4 Low Rd", "zip": "560002", "isDefault": false}
		]`))
	}))
	defer server.Close()

	service := newTestService(t, server.URL)
	result := service.List(context.Background())

	require.True(t, result.Success)
	addrs := *result.Data
	require.Len(t, addrs, 2)

	require.Equal(t, int64(7), addrs[0].ID)
	require.Equal(t, "12 High St", addrs[0].Line)
	require.Equal(t, "560001", addrs[0].PostalCode)
	require.True(t, addrs[0].IsDefault, "string-typed default flag is honored")

	require.Zero(t, addrs[1].ID)
	require.Equal(t, "srv-9", addrs[1].UID)
	require.Equal(t, "4 Low Rd", addrs[1].Line)
	require.False(t, addrs[1].IsDefault)
}

func TestListEmptyCollectionMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no addresses found"}`))
	}))
	defer server.Close()

	service := newTestService(t, server.URL)
	result := service.List(context.Background())

	require.True(t, result.Success)
	require.Empty(t, *result.Data)
}

func TestDeleteAlreadyAbsentIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"address does not exist"}`))
	}))
	defer server.Close()

	service := newTestService(t, server.URL)
	result := service.Delete(context.Background(), 7)
	require.True(t, result.Success)
}

func TestCheckoutSelectionRoundtrip(t *testing.T) {
	service := newTestService(t, "http://127.0.0.1:0")
	ctx := context.Background()

	selection, err := service.CheckoutSelection(ctx)
	require.NoError(t, err)
	require.Nil(t, selection)

	addr := Address{ID: 42, Line: "12 High St", PostalCode: "560001"}
	require.NoError(t, service.SelectForCheckout(ctx, addr))

	selection, err = service.CheckoutSelection(ctx)
	require.NoError(t, err)
	require.NotNil(t, selection)
	require.Equal(t, int64(42), selection.ID)

	require.NoError(t, service.ClearCheckoutSelection(ctx))
	selection, err = service.CheckoutSelection(ctx)
	require.NoError(t, err)
	require.Nil(t, selection)
}
