package schedule

import (
	"time"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/constants"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/datetime"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/loan"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/mathutil"
	"go.uber.org/zap"
)

// Checkpointer receives a checkpoint every Options.BatchSize payments.
// Returning a non-nil error aborts generation and discards the partial
// schedule. The generator never checkpoints mid-period, so an implementation
// always observes a consistent processed-count/percent pair.
type Checkpointer interface {
	Checkpoint(processed int, percent float64) error
}

type noopCheckpointer struct{}

func (noopCheckpointer) Checkpoint(int, float64) error { return nil }

// Options tunes schedule generation. The zero value selects documented
// defaults via withDefaults.
type Options struct {
	// IncludeAdditionalPayments applies the parameters' additional payment
	// each period. Defaults to true; set SkipAdditionalPayments to disable.
	SkipAdditionalPayments bool `json:"skipAdditionalPayments,omitempty" yaml:"skipAdditionalPayments,omitempty"`

	// BatchSize is the number of payments between checkpoints.
	BatchSize int `json:"batchSize,omitempty" yaml:"batchSize,omitempty"`

	// MaxPayments caps the loop as a safety valve against parameter
	// combinations that cannot amortize. 0 selects
	// MaxPaymentsFactor x numberOfPayments, bounded by the hard ceiling.
	MaxPayments int `json:"maxPayments,omitempty" yaml:"maxPayments,omitempty"`

	// MaxPaymentsFactor scales the computed payment count when MaxPayments
	// is 0.
	MaxPaymentsFactor float64 `json:"maxPaymentsFactor,omitempty" yaml:"maxPaymentsFactor,omitempty"`

	// Timeout is the wall-clock budget for cooperative runs.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// SnapTolerance is the balance below which the loan is considered paid
	// off. The correct tolerance is a product decision, so it is
	// configurable rather than hard-coded.
	SnapTolerance float64 `json:"snapTolerance,omitempty" yaml:"snapTolerance,omitempty"`

	// PaymentOverride replaces the computed regular payment when positive.
	// The override is still subject to the payment sufficiency check.
	PaymentOverride float64 `json:"paymentOverride,omitempty" yaml:"paymentOverride,omitempty"`
}

// DefaultOptions returns Options populated with the documented defaults
// for the given parameters.
func DefaultOptions(params loan.Parameters) Options {
	return Options{}.withDefaults(params)
}

func (o Options) withDefaults(params loan.Parameters) Options {
	if o.BatchSize <= 0 {
		o.BatchSize = constants.DefaultBatchSize
	}
	if o.MaxPaymentsFactor <= 0 {
		o.MaxPaymentsFactor = constants.DefaultMaxPaymentsFactor
	}
	if o.MaxPayments <= 0 {
		o.MaxPayments = int(o.MaxPaymentsFactor * float64(params.NumberOfPayments()))
	}
	if o.MaxPayments > constants.MaxPaymentsCeiling {
		o.MaxPayments = constants.MaxPaymentsCeiling
	}
	if o.Timeout <= 0 {
		o.Timeout = constants.DefaultTimeout
	}
	if o.SnapTolerance <= 0 {
		o.SnapTolerance = constants.DefaultSnapTolerance
	}
	return o
}

// validate checks the generator preconditions. Each failure is a distinct
// typed error detected before any payment is constructed.
func validate(params loan.Parameters, regularPayment float64) error {
	amount := params.LoanAmount()
	if amount <= 0 || amount > constants.MaxLoanAmount {
		return NewError(KindAmountOutOfRange,
			"loan amount %.2f must be in (0, %.0f]", amount, constants.MaxLoanAmount)
	}
	if rate := params.InterestRate(); rate < 0 || rate > constants.MaxInterestRate {
		return NewError(KindRateOutOfRange,
			"interest rate %.2f must be in [0, %.0f]", rate, constants.MaxInterestRate)
	}
	if term := params.TermMonths(); term <= 0 || term > constants.MaxTermMonths {
		return NewError(KindTermOutOfRange,
			"term %d months must be in (0, %d]", term, constants.MaxTermMonths)
	}
	if rate := params.PeriodicRate(); rate > 0 && regularPayment <= amount*rate {
		return NewError(KindPaymentTooLowForInterest,
			"payment %.2f does not cover periodic interest %.2f; increase the term or reduce the principal",
			regularPayment, amount*rate)
	}
	return nil
}

// generate runs the canonical amortization loop. Every execution mode goes
// through this function so the payment sequences are identical regardless
// of how checkpoints are driven.
func generate(logger *zap.Logger, params loan.Parameters, opts Options, cp Checkpointer) (*Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cp == nil {
		cp = noopCheckpointer{}
	}
	opts = opts.withDefaults(params)

	regularPayment := params.RegularPayment()
	if opts.PaymentOverride > 0 {
		regularPayment = opts.PaymentOverride
	}
	if err := validate(params, regularPayment); err != nil {
		return nil, err
	}

	extra := params.AdditionalPayment()
	if opts.SkipAdditionalPayments {
		extra = 0
	}

	periodicRate := params.PeriodicRate()
	estimated := params.NumberOfPayments()
	balance := params.LoanAmount()

	logger.Debug("generating amortization schedule",
		zap.String("op", "schedule.generate"),
		zap.Float64("loanAmount", balance),
		zap.Float64("regularPayment", regularPayment),
		zap.Int("estimatedPayments", estimated),
	)

	payments := make([]Payment, 0, estimated)
	for number := 1; ; number++ {
		if number > opts.MaxPayments {
			logger.Warn("max payments exceeded with balance outstanding",
				zap.String("op", "schedule.generate"),
				zap.Int("maxPayments", opts.MaxPayments),
				zap.Float64("balance", balance),
			)
			return nil, NewError(KindMaxPaymentsExceeded,
				"balance %.2f remains after %d payments; check the loan parameters", balance, opts.MaxPayments)
		}

		interest := balance * periodicRate
		totalPay := mathutil.Min(regularPayment+extra, balance+interest)
		principal := totalPay - interest
		balance = mathutil.Max(0, balance-principal)
		if balance < opts.SnapTolerance {
			// Snapping avoids an infinite tail of sub-cent payments.
			balance = 0
		}

		payments = append(payments, Payment{
			Number:    number,
			Date:      datetime.NewDate(params.PaymentDate(number)),
			Amount:    totalPay,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})

		if balance == 0 {
			break
		}

		if number%opts.BatchSize == 0 {
			percent := estimatePercent(number, estimated)
			if err := cp.Checkpoint(number, percent); err != nil {
				return nil, err
			}
		}
	}

	return FromPayments(payments), nil
}

// estimatePercent maps processed payments onto [0, 99]. The estimate never
// reports 100 because additional payments or rounding can change the final
// count.
func estimatePercent(processed, estimated int) float64 {
	if estimated <= 0 {
		return 0
	}
	percent := 100 * float64(processed) / float64(estimated)
	if percent > 99 {
		percent = 99
	}
	return percent
}
