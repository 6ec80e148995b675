package address

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/angelmondragon/packfinderz-client/internal/store"
	"github.com/angelmondragon/packfinderz-client/internal/transport"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
)

const checkoutAddressKey = "selected_address"

// Service exposes the remote address book plus the persisted
// checkout-address selection.
type Service interface {
	List(ctx context.Context) transport.Result[[]Address]
	Create(ctx context.Context, input Input) transport.Result[Address]
	Update(ctx context.Context, id int64, input Input) transport.Result[Address]
	Delete(ctx context.Context, id int64) transport.Result[struct{}]
	SelectForCheckout(ctx context.Context, addr Address) error
	CheckoutSelection(ctx context.Context) (*Address, error)
	ClearCheckoutSelection(ctx context.Context) error
}

// Input carries the writable address fields.
type Input struct {
	Label      string `json:"kind"`
	Line       string `json:"line"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"isDefault"`
}

type service struct {
	client *transport.Client
	store  *store.Store
	logg   *logger.Logger
}

func NewService(client *transport.Client, st *store.Store, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("transport client required")
	}
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, store: st, logg: logg}, nil
}

// List fetches and normalizes the remote address book. A "no addresses
// found" 4xx arrives here already normalized to an empty collection.
func (s *service) List(ctx context.Context) transport.Result[[]Address] {
	result, err := transport.Execute[[]map[string]any](ctx, s.client, transport.Request{
		Method: http.MethodGet,
		Path:   transport.PathAddresses,
	})
	if err != nil {
		return transport.Fail[[]Address](err)
	}

	var raw []map[string]any
	if result.Data != nil {
		raw = *result.Data
	}
	return transport.Ok(Normalize(raw))
}

func (s *service) Create(ctx context.Context, input Input) transport.Result[Address] {
	return s.write(ctx, http.MethodPost, transport.PathAddresses, input)
}

func (s *service) Update(ctx context.Context, id int64, input Input) transport.Result[Address] {
	if id <= 0 {
		return transport.Fail[Address](fmt.Errorf("address id is required"))
	}
	return s.write(ctx, http.MethodPut, transport.PathAddress(strconv.FormatInt(id, 10)), input)
}

func (s *service) write(ctx context.Context, method, path string, input Input) transport.Result[Address] {
	result, err := transport.Execute[map[string]any](ctx, s.client, transport.Request{
		Method: method,
		Path:   path,
		Body:   input,
	})
	if err != nil {
		return transport.Fail[Address](err)
	}

	var raw map[string]any
	if result.Data != nil {
		raw = *result.Data
	}
	normalized := Normalize([]map[string]any{raw})
	return transport.Ok(normalized[0])
}

// Delete removes the address remotely; a 404 on an already-gone address
// reports success.
func (s *service) Delete(ctx context.Context, id int64) transport.Result[struct{}] {
	if id <= 0 {
		return transport.Fail[struct{}](fmt.Errorf("address id is required"))
	}
	_, err := s.client.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   transport.PathAddress(strconv.FormatInt(id, 10)),
	})
	if err != nil {
		return transport.Fail[struct{}](err)
	}
	return transport.Ok(struct{}{})
}

// SelectForCheckout pins the address the next order submission uses.
func (s *service) SelectForCheckout(ctx context.Context, addr Address) error {
	return s.store.PutJSON(ctx, store.NamespaceCheckout, checkoutAddressKey, addr)
}

// CheckoutSelection returns the pinned checkout address, if any.
func (s *service) CheckoutSelection(ctx context.Context) (*Address, error) {
	var addr Address
	ok, err := s.store.GetJSON(ctx, store.NamespaceCheckout, checkoutAddressKey, &addr)
	if err != nil || !ok {
		return nil, err
	}
	return &addr, nil
}

// ClearCheckoutSelection drops the pinned address after checkout.
func (s *service) ClearCheckoutSelection(ctx context.Context) error {
	return s.store.Delete(ctx, store.NamespaceCheckout, checkoutAddressKey)
}
