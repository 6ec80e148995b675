package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/packfinderz-client/internal/address"
	"github.com/angelmondragon/packfinderz-client/internal/cart"
	"github.com/angelmondragon/packfinderz-client/internal/store"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus maps the remote status string onto the known set,
// defaulting to processing for anything unrecognized.
func ParseStatus(value string) Status {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(StatusDelivered):
		return StatusDelivered
	case string(StatusCancelled):
		return StatusCancelled
	default:
		return StatusProcessing
	}
}

// Order is an immutable local record of a submitted order; only Status
// changes afterwards, driven by the server.
type Order struct {
	LocalID     string          `json:"localId"`
	OrderID     string          `json:"orderId"`
	Items       []cart.Item     `json:"items"`
	TotalAmount float64         `json:"totalAmount"`
	Address     address.Address `json:"address"`
	Status      Status          `json:"status"`
	UserID      string          `json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`

	// LocalFallback marks receipts synthesized while the backend order
	// write was failing; reconciliation can find them by this flag and
	// the "local-" id prefix.
	LocalFallback bool `json:"isLocalFallback"`
}

// NewLocalID derives a globally unique local identifier; the creation
// timestamp guards against remote id collisions.
func NewLocalID(orderID string, createdAt time.Time) string {
	return fmt.Sprintf("%s-%d", orderID, createdAt.UnixNano())
}

// Log is the durable order history on this device.
type Log struct {
	store *store.Store
	logg  *logger.Logger
}

func NewLog(st *store.Store, logg *logger.Logger) (*Log, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Log{store: st, logg: logg}, nil
}

// Append records a freshly submitted order under its local id.
func (l *Log) Append(ctx context.Context, order Order) error {
	if order.LocalID == "" {
		return fmt.Errorf("order local id is required")
	}
	return l.store.PutJSON(ctx, store.NamespaceOrders, order.LocalID, order)
}

// History returns every recorded order, newest first.
func (l *Log) History(ctx context.Context) ([]Order, error) {
	keys, err := l.store.Keys(ctx, store.NamespaceOrders)
	if err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(keys))
	for _, key := range keys {
		var order Order
		ok, err := l.store.GetJSON(ctx, store.NamespaceOrders, key, &order)
		if err != nil {
			l.logg.Error(l.logg.WithOrderID(ctx, key), "skipping unreadable order record", err)
			continue
		}
		if ok {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// Get returns one order by local id.
func (l *Log) Get(ctx context.Context, localID string) (*Order, error) {
	var order Order
	ok, err := l.store.GetJSON(ctx, store.NamespaceOrders, localID, &order)
	if err != nil || !ok {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus applies a server-driven status transition.
func (l *Log) UpdateStatus(ctx context.Context, localID string, status Status) error {
	order, err := l.Get(ctx, localID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order %s not found", localID)
	}
	order.Status = status
	return l.store.PutJSON(ctx, store.NamespaceOrders, localID, order)
}
