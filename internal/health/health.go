package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/packfinderz-client/internal/transport"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
	"go.uber.org/multierr"
)

// pinger is the slice of the persisted store the checker needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// Status describes one probed component.
type Status struct {
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Report is the combined probe outcome. The client stays usable with a
// degraded remote; only a broken local store makes it unhealthy.
type Report struct {
	Store   Status `json:"store"`
	Remote  Status `json:"remote"`
	Healthy bool   `json:"healthy"`
}

// Checker probes the persisted store and the remote API.
type Checker struct {
	store   pinger
	client  *transport.Client
	logg    *logger.Logger
	timeout time.Duration
}

func NewChecker(store pinger, client *transport.Client, logg *logger.Logger) (*Checker, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if client == nil {
		return nil, fmt.Errorf("transport client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Checker{
		store:   store,
		client:  client,
		logg:    logg,
		timeout: 5 * time.Second,
	}, nil
}

// Check probes both components within its own deadline and reports the
// combined outcome. The returned error aggregates every failed probe.
func (c *Checker) Check(ctx context.Context) (Report, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	report := Report{
		Store:  Status{Healthy: true},
		Remote: Status{Healthy: true},
	}
	var errs error

	if err := c.store.Ping(ctx); err != nil {
		report.Store = Status{Detail: err.Error()}
		errs = multierr.Append(errs, fmt.Errorf("store: %w", err))
	}

	if _, err := c.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   transport.PathPing,
	}); err != nil {
		report.Remote = Status{Detail: err.Error()}
		errs = multierr.Append(errs, fmt.Errorf("remote: %w", err))
		c.logg.Warn(c.logg.WithEndpoint(ctx, http.MethodGet, transport.PathPing), "remote ping failed")
	}

	report.Healthy = report.Store.Healthy
	return report, errs
}
