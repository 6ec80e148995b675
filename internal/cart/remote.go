package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/angelmondragon/packfinderz-client/internal/transport"
)

// wireItem is the cart row shape the remote API speaks.
type wireItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageRef  string  `json:"image,omitempty"`
}

func toWire(item Item) wireItem {
	return wireItem{
		ID:        item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  item.Quantity,
		ImageRef:  item.ImageRef,
	}
}

func fromWire(item wireItem) Item {
	return Item{
		ID:         item.ID,
		Name:       item.Name,
		UnitPrice:  item.UnitPrice,
		Quantity:   item.Quantity,
		ImageRef:   item.ImageRef,
		Provenance: ProvenanceRemote,
	}
}

type apiRemote struct {
	client *transport.Client
}

// NewRemote builds the transport-backed remote cart mirror.
func NewRemote(client *transport.Client) (Remote, error) {
	if client == nil {
		return nil, fmt.Errorf("transport client required")
	}
	return &apiRemote{client: client}, nil
}

func (r *apiRemote) Fetch(ctx context.Context) ([]Item, error) {
	result, err := transport.Execute[[]wireItem](ctx, r.client, transport.Request{
		Method: http.MethodGet,
		Path:   transport.PathCart,
	})
	if err != nil {
		return nil, err
	}

	var raw []wireItem
	if result.Data != nil {
		raw = *result.Data
	}
	items := make([]Item, 0, len(raw))
	for _, item := range raw {
		items = append(items, fromWire(item))
	}
	return items, nil
}

func (r *apiRemote) Create(ctx context.Context, item Item) error {
	_, err := r.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   transport.PathCartItems,
		Body:   toWire(item),
	})
	return err
}

func (r *apiRemote) Update(ctx context.Context, item Item) error {
	_, err := r.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   transport.PathCartItem(item.ID),
		Body:   toWire(item),
	})
	return err
}

// SetQuantity is the idempotent quantity variant; zero quantities are
// removal calls, so a 404 "already absent" reports success.
func (r *apiRemote) SetQuantity(ctx context.Context, id string, quantity int) error {
	_, err := r.client.Do(ctx, transport.Request{
		Method:  http.MethodPut,
		Path:    transport.PathCartItem(id),
		Body:    map[string]int{"quantity": quantity},
		Removal: quantity == 0,
	})
	return err
}

func (r *apiRemote) Delete(ctx context.Context, id string) error {
	_, err := r.client.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   transport.PathCartItem(id),
	})
	return err
}
