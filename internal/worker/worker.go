// Package worker hosts the schedule generator in an isolated execution
// context reachable only through asynchronous message passing. Parameters
// and results cross the boundary as JSON-encoded structural copies tagged
// with correlation ids, so concurrent requests multiplex over one channel
// pair without shared memory.
package worker

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/constants"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/inflation"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/loan"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
	"go.uber.org/zap"
)

const responseBuffer = 64

// Bridge routes requests to the worker goroutine and responses back to
// callers by correlation id. Construct with NewBridge and call Start once;
// there are no package-level message handlers.
type Bridge struct {
	logger   *zap.Logger
	requests chan Request

	mu      sync.Mutex
	pending map[string]*pendingRequest
}

type pendingRequest struct {
	responses       chan Response
	cancel          context.CancelFunc
	cancelRequested bool
	terminal        bool
	lastPercent     float64
}

// NewBridge constructs a Bridge. A nil logger is replaced with a no-op
// logger.
func NewBridge(logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		logger:   logger,
		requests: make(chan Request),
		pending:  make(map[string]*pendingRequest),
	}
}

// Start launches the worker goroutine. The worker runs until ctx is
// cancelled; individual request failures never stop it.
func (b *Bridge) Start(ctx context.Context) {
	go b.run(ctx)
}

func (b *Bridge) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-b.requests:
			if req.Kind == KindCancel {
				b.handleCancel(req.ID)
				continue
			}
			go b.handle(ctx, req)
		}
	}
}

// Calculate submits a request and blocks until its terminal response. The
// onProgress callback receives interim progress frames in strictly
// increasing percent order. Cancelling ctx sends a cancel message for the
// request id; Calculate still waits for the terminal acknowledgement so no
// response outlives the call.
func (b *Bridge) Calculate(ctx context.Context, kind Kind, payload interface{},
	onProgress func(percent float64, message string)) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, schedule.NewError(schedule.KindWorkerProtocol, "unable to encode payload: %v", err)
	}

	req := Request{Kind: kind, Payload: raw, ID: NewID()}
	pr, err := b.register(req)
	if err != nil {
		return nil, err
	}
	b.requests <- req

	done := ctx.Done()
	for {
		select {
		case <-done:
			// Request cancellation once, then drain until the terminal
			// Cancelled acknowledgement arrives.
			done = nil
			b.requests <- Request{Kind: KindCancel, ID: req.ID}
		case resp := <-pr.responses:
			switch resp.Kind {
			case KindProgress:
				if onProgress != nil {
					onProgress(resp.Percent, resp.Message)
				}
			case KindComplete:
				b.unregister(req.ID)
				return resp.Result, nil
			case KindError:
				b.unregister(req.ID)
				return nil, &schedule.Error{Kind: schedule.ErrorKind(resp.ErrorKind), Message: resp.Message}
			}
		}
	}
}

// register validates the request and allocates its response routing. A
// malformed request fails with WorkerProtocolError before reaching the
// worker.
func (b *Bridge) register(req Request) (*pendingRequest, error) {
	switch req.Kind {
	case KindCalculateAmortization, KindCalculatePayment, KindCalculateInflation:
	default:
		return nil, schedule.NewError(schedule.KindWorkerProtocol, "unknown request kind %q", req.Kind)
	}
	if req.ID == "" {
		return nil, schedule.NewError(schedule.KindWorkerProtocol, "missing correlation id")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.pending[req.ID]; exists {
		return nil, schedule.NewError(schedule.KindWorkerProtocol, "duplicate correlation id %q", req.ID)
	}
	pr := &pendingRequest{responses: make(chan Response, responseBuffer)}
	b.pending[req.ID] = pr
	return pr, nil
}

func (b *Bridge) unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, id)
}

func (b *Bridge) lookup(id string) *pendingRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending[id]
}

func (b *Bridge) handleCancel(id string) {
	b.mu.Lock()
	pr := b.pending[id]
	var cancel context.CancelFunc
	if pr != nil && !pr.terminal {
		pr.cancelRequested = true
		cancel = pr.cancel
	}
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	} else {
		b.logger.Debug("cancel for unknown or finished request",
			zap.String("op", "worker.handleCancel"),
			zap.String("correlationId", id),
		)
	}
}

// sendProgress relays a progress frame, dropping any frame whose percent
// does not strictly exceed the last delivered one and any frame arriving
// after the terminal response.
func (b *Bridge) sendProgress(id string, percent float64, message string) {
	b.mu.Lock()
	pr := b.pending[id]
	if pr == nil || pr.terminal || percent <= pr.lastPercent {
		b.mu.Unlock()
		return
	}
	pr.lastPercent = percent
	b.mu.Unlock()

	select {
	case pr.responses <- Response{Kind: KindProgress, ID: id, Percent: percent, Message: message}:
	default:
		// A slow caller loses progress frames, never the terminal.
	}
}

// sendTerminal delivers the single terminal response for a request id. At
// most one terminal is ever sent; later calls are ignored.
func (b *Bridge) sendTerminal(id string, resp Response) {
	b.mu.Lock()
	pr := b.pending[id]
	if pr == nil || pr.terminal {
		b.mu.Unlock()
		return
	}
	pr.terminal = true
	b.mu.Unlock()

	pr.responses <- resp
}

func (b *Bridge) sendError(id string, err error) {
	kind := schedule.KindOf(err)
	if kind == "" {
		kind = schedule.KindWorkerProtocol
	}
	b.sendTerminal(id, Response{Kind: KindError, ID: id, ErrorKind: string(kind), Message: err.Error()})
}

func (b *Bridge) sendComplete(id string, result interface{}) {
	raw, err := json.Marshal(result)
	if err != nil {
		b.sendError(id, schedule.NewError(schedule.KindWorkerProtocol, "unable to encode result: %v", err))
		return
	}
	b.sendTerminal(id, Response{Kind: KindComplete, ID: id, Result: raw})
}

// handle executes one request inside the worker context.
func (b *Bridge) handle(ctx context.Context, req Request) {
	pr := b.lookup(req.ID)
	if pr == nil {
		b.logger.Warn("request with no registered caller",
			zap.String("op", "worker.handle"),
			zap.String("correlationId", req.ID),
		)
		return
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	b.mu.Lock()
	pr.cancel = cancel
	if pr.cancelRequested {
		// Cancel raced ahead of dispatch; honor it immediately.
		cancel()
	}
	b.mu.Unlock()

	switch req.Kind {
	case KindCalculateAmortization:
		b.handleAmortization(reqCtx, req)
	case KindCalculatePayment:
		b.handlePayment(req)
	case KindCalculateInflation:
		b.handleInflation(req)
	default:
		b.sendError(req.ID, schedule.NewError(schedule.KindWorkerProtocol, "unknown request kind %q", req.Kind))
	}
}

func (b *Bridge) handleAmortization(ctx context.Context, req Request) {
	var payload AmortizationPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		b.sendError(req.ID, schedule.NewError(schedule.KindWorkerProtocol, "malformed amortization payload: %v", err))
		return
	}

	params, err := loan.New(payload.Params)
	if err != nil {
		b.sendError(req.ID, schedule.NewError(schedule.KindWorkerProtocol, "invalid parameters: %v", err))
		return
	}

	opts := payload.Options
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultWorkerTimeout
	}

	result, err := schedule.ComputeAsync(ctx, b.logger, params, opts,
		schedule.ProgressFunc(func(percent float64, message string) {
			b.sendProgress(req.ID, percent, message)
		}))
	if err != nil {
		b.sendError(req.ID, err)
		return
	}
	b.sendComplete(req.ID, result)
}

func (b *Bridge) handlePayment(req Request) {
	var payload PaymentPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		b.sendError(req.ID, schedule.NewError(schedule.KindWorkerProtocol, "malformed payment payload: %v", err))
		return
	}

	params, err := loan.New(payload.Params)
	if err != nil {
		b.sendError(req.ID, schedule.NewError(schedule.KindWorkerProtocol, "invalid parameters: %v", err))
		return
	}

	b.sendComplete(req.ID, PaymentResult{
		RegularPayment:   params.RegularPayment(),
		PeriodicRate:     params.PeriodicRate(),
		NumberOfPayments: params.NumberOfPayments(),
	})
}

func (b *Bridge) handleInflation(req Request) {
	var payload InflationPayload
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		b.sendError(req.ID, schedule.NewError(schedule.KindWorkerProtocol, "malformed inflation payload: %v", err))
		return
	}
	if payload.Schedule == nil || len(payload.Schedule.Payments) == 0 {
		b.sendError(req.ID, schedule.NewError(schedule.KindWorkerProtocol, "inflation payload has no schedule"))
		return
	}

	// Re-materialize so aggregates are consistent with the payments that
	// crossed the boundary.
	s := schedule.FromPayments(payload.Schedule.Payments)
	b.sendComplete(req.ID, inflation.Adjust(s, payload.AnnualRate))
}
