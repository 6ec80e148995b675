package orders

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/packfinderz-client/internal/transport"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
)

// Service refreshes order statuses from the remote side.
type Service interface {
	RefreshStatus(ctx context.Context, localID string) transport.Result[Order]
}

type service struct {
	log    *Log
	client *transport.Client
	logg   *logger.Logger
}

func NewService(log *Log, client *transport.Client, logg *logger.Logger) (Service, error) {
	if log == nil {
		return nil, fmt.Errorf("order log required")
	}
	if client == nil {
		return nil, fmt.Errorf("transport client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{log: log, client: client, logg: logg}, nil
}

// RefreshStatus reads the order's server status and updates the local
// record. Synthesized orders have no server counterpart and are
// returned unchanged.
func (s *service) RefreshStatus(ctx context.Context, localID string) transport.Result[Order] {
	order, err := s.log.Get(ctx, localID)
	if err != nil {
		return transport.Fail[Order](err)
	}
	if order == nil {
		return transport.Fail[Order](fmt.Errorf("order %s not found", localID))
	}
	if strings.HasPrefix(order.OrderID, "local-") {
		return transport.Ok(*order)
	}

	type statusBody struct {
		Status string `json:"status"`
	}
	result, err := transport.Execute[statusBody](ctx, s.client, transport.Request{
		Method: http.MethodGet,
		Path:   transport.PathOrder(order.OrderID),
	})
	if err != nil {
		return transport.Fail[Order](err)
	}

	if result.Data != nil {
		status := ParseStatus(result.Data.Status)
		if status != order.Status {
			if err := s.log.UpdateStatus(ctx, localID, status); err != nil {
				return transport.Fail[Order](err)
			}
			order.Status = status
		}
	}
	return transport.Ok(*order)
}
