package schedule

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/loan"
	"go.uber.org/zap"
)

// ProgressReporter receives interim progress during cooperative runs. It
// is invoked only at checkpoint boundaries, in strictly increasing
// payment-number order.
type ProgressReporter interface {
	Progress(percent float64, message string)
}

// ProgressFunc adapts a plain function to the ProgressReporter interface.
type ProgressFunc func(percent float64, message string)

// Progress implements ProgressReporter.
func (f ProgressFunc) Progress(percent float64, message string) {
	if f != nil {
		f(percent, message)
	}
}

// Compute generates a schedule inline, running the loop to completion on
// the calling goroutine with no suspension. Suitable when the schedule is
// small enough that blocking the caller is imperceptible.
func Compute(logger *zap.Logger, params loan.Parameters, opts Options) (*Schedule, error) {
	return generate(logger, params, opts, nil)
}

// cooperativeCheckpointer reports progress, yields the processor, and
// enforces cancellation and the wall-clock budget at each checkpoint.
type cooperativeCheckpointer struct {
	ctx      context.Context
	deadline time.Time
	timeout  time.Duration
	reporter ProgressReporter
}

func (c *cooperativeCheckpointer) Checkpoint(processed int, percent float64) error {
	if c.reporter != nil {
		c.reporter.Progress(percent, fmt.Sprintf("processed %d payments", processed))
	}

	select {
	case <-c.ctx.Done():
		if c.ctx.Err() == context.DeadlineExceeded {
			return NewError(KindTimeout, "schedule generation exceeded its deadline after %d payments", processed)
		}
		return NewError(KindCancelled, "schedule generation cancelled after %d payments", processed)
	default:
	}

	if !c.deadline.IsZero() && time.Now().After(c.deadline) {
		return NewError(KindTimeout, "schedule generation exceeded %s after %d payments",
			c.timeout, processed)
	}

	// Yield so the host scheduler can service other work between batches.
	runtime.Gosched()
	return nil
}

// ComputeAsync generates a schedule cooperatively: at every checkpoint it
// invokes the reporter, yields control, and checks both ctx cancellation
// and the elapsed wall-clock budget from Options.Timeout. A cancelled or
// timed-out run discards its partial results and returns a typed Cancelled
// or Timeout error; the payment sequence of a successful run is identical
// to the inline mode's.
func ComputeAsync(ctx context.Context, logger *zap.Logger, params loan.Parameters,
	opts Options, reporter ProgressReporter) (*Schedule, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults(params)

	cp := &cooperativeCheckpointer{
		ctx:      ctx,
		deadline: time.Now().Add(opts.Timeout),
		timeout:  opts.Timeout,
		reporter: reporter,
	}

	result, err := generate(logger, params, opts, cp)
	if err != nil {
		return nil, err
	}
	if reporter != nil {
		reporter.Progress(100, fmt.Sprintf("completed %d payments", len(result.Payments)))
	}
	return result, nil
}
