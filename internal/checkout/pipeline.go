package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/packfinderz-client/internal/address"
	"github.com/angelmondragon/packfinderz-client/internal/cart"
	"github.com/angelmondragon/packfinderz-client/internal/orders"
	"github.com/angelmondragon/packfinderz-client/internal/transport"
	"github.com/angelmondragon/packfinderz-client/pkg/config"
	pkgerrors "github.com/angelmondragon/packfinderz-client/pkg/errors"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
)

// localCart is the slice of the coordinator the pipeline needs.
type localCart interface {
	Clear(ctx context.Context) error
}

// remoteDrainer zeroes cart rows server-side after a real commit.
type remoteDrainer interface {
	SetQuantity(ctx context.Context, id string, quantity int) error
}

type orderRecorder interface {
	Append(ctx context.Context, order orders.Order) error
}

type selectionClearer interface {
	ClearCheckoutSelection(ctx context.Context) error
}

// SubmitInput composes cart, address, and user into one submission.
type SubmitInput struct {
	Items   []cart.Item
	Address *address.Address
	UserID  string
}

// Receipt is what the screens render after checkout completes.
type Receipt struct {
	OrderID       string        `json:"orderId"`
	LocalID       string        `json:"localId"`
	Status        orders.Status `json:"status"`
	TotalAmount   float64       `json:"totalAmount"`
	LocalFallback bool          `json:"isLocalFallback"`
}

// wireReceipt is the order-create response body.
type wireReceipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Pipeline is the order submission path: validate, normalize, commit
// remotely within a short retry budget, persist locally, clean up. The
// user-visible flow completes on any server outcome except validation
// failure or total unreachability.
type Pipeline struct {
	client    *transport.Client
	cart      localCart
	drainer   remoteDrainer
	log       orderRecorder
	selection selectionClearer
	validate  *validator.Validate
	logg      *logger.Logger

	attempts int
	delay    time.Duration
	now      func() time.Time
}

// PipelineParams wires the submission pipeline.
type PipelineParams struct {
	Client    *transport.Client
	Cart      localCart
	Drainer   remoteDrainer
	Log       orderRecorder
	Selection selectionClearer
	Retry     config.RetryConfig
	Logger    *logger.Logger
}

func NewPipeline(params PipelineParams) (*Pipeline, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("transport client required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("local cart required")
	}
	if params.Drainer == nil {
		return nil, fmt.Errorf("remote drainer required")
	}
	if params.Log == nil {
		return nil, fmt.Errorf("order log required")
	}
	if params.Selection == nil {
		return nil, fmt.Errorf("checkout selection required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	attempts := params.Retry.SubmitAttempts
	if attempts <= 0 {
		attempts = 2
	}
	delay := params.Retry.SubmitRetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &Pipeline{
		client:    params.Client,
		cart:      params.Cart,
		drainer:   params.Drainer,
		log:       params.Log,
		selection: params.Selection,
		validate:  validator.New(),
		logg:      params.Logger,
		attempts:  attempts,
		delay:     delay,
		now:       time.Now,
	}, nil
}

// Submit runs the whole pipeline. Preconditions fail before any
// network call; retryable failures are retried within the pipeline's
// own budget; a recovered order-create 500 arrives here as a
// synthesized success and is treated like a real one, except the
// remote cart is not drained.
func (p *Pipeline) Submit(ctx context.Context, input SubmitInput) transport.Result[Receipt] {
	if input.Address == nil {
		return transport.Fail[Receipt](pkgerrors.New(pkgerrors.CodeValidation, "an address must be selected"))
	}
	if !input.Address.HasNumericID() {
		return transport.Fail[Receipt](pkgerrors.New(pkgerrors.CodeValidation, "the selected address has no usable id"))
	}

	payload := buildPayload(input.Items, *input.Address, input.UserID)
	if err := p.validate.Struct(payload); err != nil {
		return transport.Fail[Receipt](pkgerrors.Wrap(pkgerrors.CodeValidation, err, validationMessage(err)))
	}

	result, err := p.commit(ctx, payload)
	if err != nil {
		// Retries exhausted or terminal failure: leave cart and address
		// untouched so the user can try again.
		return transport.Fail[Receipt](err)
	}

	receipt := p.persist(ctx, input, result)

	if !result.LocalFallback {
		p.drainRemoteCart(ctx, input.Items)
	}
	p.cleanupLocal(ctx)

	if result.LocalFallback {
		return transport.OkFallback(receipt)
	}
	return transport.Ok(receipt)
}

func (p *Pipeline) commit(ctx context.Context, payload orderPayload) (transport.Result[wireReceipt], error) {
	backoff := retry.WithMaxRetries(uint64(p.attempts-1), retry.NewConstant(p.delay))

	var result transport.Result[wireReceipt]
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var attemptErr error
		result, attemptErr = transport.Execute[wireReceipt](ctx, p.client, transport.Request{
			Method: http.MethodPost,
			Path:   transport.PathOrders,
			Body:   payload,
		})
		if attemptErr == nil {
			return nil
		}
		if pkgerrors.Retryable(attemptErr) {
			return retry.RetryableError(attemptErr)
		}
		return attemptErr
	})
	return result, err
}

func (p *Pipeline) persist(ctx context.Context, input SubmitInput, result transport.Result[wireReceipt]) Receipt {
	now := p.now().UTC()
	var wire wireReceipt
	if result.Data != nil {
		wire = *result.Data
	}

	order := orders.Order{
		LocalID:       orders.NewLocalID(wire.ID, now),
		OrderID:       wire.ID,
		Items:         append([]cart.Item(nil), input.Items...),
		TotalAmount:   cart.Total(input.Items).InexactFloat64(),
		Address:       *input.Address,
		Status:        orders.ParseStatus(wire.Status),
		UserID:        input.UserID,
		CreatedAt:     now,
		LocalFallback: result.LocalFallback,
	}
	if err := p.log.Append(ctx, order); err != nil {
		p.logg.Error(p.logg.WithOrderID(ctx, order.LocalID), "persisting order record failed", err)
	}

	return Receipt{
		OrderID:       order.OrderID,
		LocalID:       order.LocalID,
		Status:        order.Status,
		TotalAmount:   order.TotalAmount,
		LocalFallback: order.LocalFallback,
	}
}

// drainRemoteCart zeroes each committed row server-side, best-effort.
func (p *Pipeline) drainRemoteCart(ctx context.Context, items []cart.Item) {
	var errs error
	for _, item := range items {
		if err := p.drainer.SetQuantity(ctx, item.ID, 0); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("drain item %s: %w", item.ID, err))
		}
	}
	if errs != nil {
		p.logg.Warn(p.logg.WithField(ctx, "error", errs.Error()), "remote cart drain incomplete")
	}
}

func (p *Pipeline) cleanupLocal(ctx context.Context) {
	if err := p.cart.Clear(ctx); err != nil {
		p.logg.Error(ctx, "clearing local cart failed", err)
	}
	if err := p.selection.ClearCheckoutSelection(ctx); err != nil {
		p.logg.Error(ctx, "clearing checkout address failed", err)
	}
}

func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return fmt.Sprintf("invalid order payload: %s", fieldErrors[0].Namespace())
	}
	return "invalid order payload"
}
