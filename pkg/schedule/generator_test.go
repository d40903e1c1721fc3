package schedule

import (
	"math"
	"testing"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/datetime"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/loan"
)

func testParams(principal, downPayment, rate float64, termMonths int, additional float64) loan.Parameters {
	return loan.FromValues(principal, downPayment, rate, termMonths, loan.Monthly,
		additional, 0, datetime.MustParseTime(datetime.DateLayout, "2026-01-01"))
}

// checkInvariants asserts the structural properties every successful
// schedule must satisfy: amount = principal + interest, balances that
// never increase, chained balances, and a final balance of exactly zero.
func checkInvariants(t *testing.T, s *Schedule) {
	t.Helper()

	if len(s.Payments) == 0 {
		t.Fatal("expected at least one payment")
	}

	previousBalance := math.Inf(1)
	for i, payment := range s.Payments {
		if payment.Number != i+1 {
			t.Errorf("payment %d has number %d", i, payment.Number)
		}
		if math.Abs(payment.Amount-(payment.Principal+payment.Interest)) > 1e-9 {
			t.Errorf("payment %d: amount %.10f != principal %.10f + interest %.10f",
				payment.Number, payment.Amount, payment.Principal, payment.Interest)
		}
		if payment.Balance > previousBalance {
			t.Errorf("payment %d: balance %.10f increased from %.10f",
				payment.Number, payment.Balance, previousBalance)
		}
		previousBalance = payment.Balance
	}

	if final := s.Payments[len(s.Payments)-1].Balance; final != 0 {
		t.Errorf("final balance = %.10f, expected exactly 0", final)
	}
}

// checkConservation asserts the principal paid matches the loan amount and
// the total paid matches loan amount plus interest.
func checkConservation(t *testing.T, s *Schedule, loanAmount float64) {
	t.Helper()

	var totalPrincipal, totalAmount float64
	for _, payment := range s.Payments {
		totalPrincipal += payment.Principal
		totalAmount += payment.Amount
	}

	if math.Abs(totalPrincipal-loanAmount) > 0.01 {
		t.Errorf("sum of principal = %.4f, expected %.4f within one cent", totalPrincipal, loanAmount)
	}
	if math.Abs(totalAmount-(loanAmount+s.TotalInterest)) > 0.01 {
		t.Errorf("sum of amounts = %.4f, expected loan amount %.4f + interest %.4f",
			totalAmount, loanAmount, s.TotalInterest)
	}
}

func TestComputeStandardMortgage(t *testing.T) {
	// principal=200000, downPayment=40000, rate=5%, term=360 months
	params := testParams(200000, 40000, 5.0, 360, 0)

	result, err := Compute(nil, params, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkInvariants(t, result)
	checkConservation(t, result, 160000)

	if len(result.Payments) != 360 {
		t.Errorf("payment count = %d, expected 360", len(result.Payments))
	}
	if result.TotalInterest <= 0 {
		t.Errorf("total interest = %.2f, expected > 0", result.TotalInterest)
	}
	if got := result.PayoffDate.Format(datetime.DateLayout); got != "2055-12-01" {
		t.Errorf("payoff date = %s, expected 2055-12-01", got)
	}
}

func TestComputeZeroInterest(t *testing.T) {
	// principal=100000, rate=0%, term=12 months
	params := testParams(100000, 0, 0, 12, 0)

	result, err := Compute(nil, params, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkInvariants(t, result)
	checkConservation(t, result, 100000)

	if len(result.Payments) != 12 {
		t.Fatalf("payment count = %d, expected exactly 12", len(result.Payments))
	}
	for _, payment := range result.Payments {
		if payment.Interest != 0 {
			t.Errorf("payment %d: interest = %.10f, expected 0", payment.Number, payment.Interest)
		}
		if math.Abs(payment.Amount-8333.33) > 0.01 {
			t.Errorf("payment %d: amount = %.4f, expected ~8333.33", payment.Number, payment.Amount)
		}
	}
}

func TestComputeAdditionalPaymentShortensSchedule(t *testing.T) {
	baseline := testParams(100000, 0, 6.0, 60, 0)
	accelerated := testParams(100000, 0, 6.0, 60, 100)

	baseResult, err := Compute(nil, baseline, Options{})
	if err != nil {
		t.Fatalf("baseline failed: %v", err)
	}
	fastResult, err := Compute(nil, accelerated, Options{})
	if err != nil {
		t.Fatalf("accelerated failed: %v", err)
	}

	checkInvariants(t, baseResult)
	checkInvariants(t, fastResult)

	if len(fastResult.Payments) >= len(baseResult.Payments) {
		t.Errorf("accelerated run has %d payments, expected fewer than baseline's %d",
			len(fastResult.Payments), len(baseResult.Payments))
	}
	if fastResult.TotalInterest >= baseResult.TotalInterest {
		t.Errorf("accelerated interest %.2f, expected less than baseline's %.2f",
			fastResult.TotalInterest, baseResult.TotalInterest)
	}
}

func TestComputeSkipAdditionalPayments(t *testing.T) {
	params := testParams(100000, 0, 6.0, 60, 100)

	withExtra, err := Compute(nil, params, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	withoutExtra, err := Compute(nil, params, Options{SkipAdditionalPayments: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(withoutExtra.Payments) <= len(withExtra.Payments) {
		t.Errorf("skipping additional payments should lengthen the schedule: %d vs %d",
			len(withoutExtra.Payments), len(withExtra.Payments))
	}
}

func TestComputePaymentTooLowForInterest(t *testing.T) {
	// Periodic interest on 100000 at 6% monthly is 500; an override at or
	// below that can never amortize.
	params := testParams(100000, 0, 6.0, 60, 0)

	result, err := Compute(nil, params, Options{PaymentOverride: 400})
	if result != nil {
		t.Fatal("expected no partial schedule on validation failure")
	}
	if kind := KindOf(err); kind != KindPaymentTooLowForInterest {
		t.Errorf("error kind = %q, expected %q", kind, KindPaymentTooLowForInterest)
	}
}

func TestComputeValidationErrors(t *testing.T) {
	start := datetime.MustParseTime(datetime.DateLayout, "2026-01-01")

	tests := []struct {
		name     string
		params   loan.Parameters
		expected ErrorKind
	}{
		{
			name:     "Zero loan amount",
			params:   loan.FromValues(0, 0, 5, 60, loan.Monthly, 0, 0, start),
			expected: KindAmountOutOfRange,
		},
		{
			name:     "Amount above ceiling",
			params:   loan.FromValues(200_000_000, 0, 5, 60, loan.Monthly, 0, 0, start),
			expected: KindAmountOutOfRange,
		},
		{
			name:     "Negative rate",
			params:   loan.FromValues(10000, 0, -1, 60, loan.Monthly, 0, 0, start),
			expected: KindRateOutOfRange,
		},
		{
			name:     "Rate above maximum",
			params:   loan.FromValues(10000, 0, 51, 60, loan.Monthly, 0, 0, start),
			expected: KindRateOutOfRange,
		},
		{
			name:     "Zero term",
			params:   loan.FromValues(10000, 0, 5, 0, loan.Monthly, 0, 0, start),
			expected: KindTermOutOfRange,
		},
		{
			name:     "Term above maximum",
			params:   loan.FromValues(10000, 0, 5, 700, loan.Monthly, 0, 0, start),
			expected: KindTermOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compute(nil, tt.params, Options{})
			if result != nil {
				t.Fatal("expected no partial schedule on validation failure")
			}
			if kind := KindOf(err); kind != tt.expected {
				t.Errorf("error kind = %q, expected %q", kind, tt.expected)
			}
		})
	}
}

func TestComputeMaxPaymentsExceeded(t *testing.T) {
	params := testParams(200000, 0, 5.0, 360, 0)

	result, err := Compute(nil, params, Options{MaxPayments: 10})
	if result != nil {
		t.Fatal("expected no partial schedule when the safety valve trips")
	}
	if kind := KindOf(err); kind != KindMaxPaymentsExceeded {
		t.Errorf("error kind = %q, expected %q", kind, KindMaxPaymentsExceeded)
	}
}

func TestComputeWeeklyFrequency(t *testing.T) {
	params := loan.FromValues(26000, 0, 4.0, 12, loan.Weekly, 0, 0,
		datetime.MustParseTime(datetime.DateLayout, "2026-01-01"))

	result, err := Compute(nil, params, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checkInvariants(t, result)
	checkConservation(t, result, 26000)

	if len(result.Payments) != 52 {
		t.Errorf("payment count = %d, expected 52", len(result.Payments))
	}
	// Weekly dates advance by exactly 7 days.
	first := result.Payments[0].Date
	second := result.Payments[1].Date
	if second.Sub(first.Time).Hours() != 7*24 {
		t.Errorf("weekly interval = %v, expected 168h", second.Sub(first.Time))
	}
}

func TestComputeSnapTolerance(t *testing.T) {
	// A residual below the snap tolerance must not spawn a trailing
	// sub-cent payment.
	params := testParams(1000, 0, 5.0, 12, 0)

	result, err := Compute(nil, params, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkInvariants(t, result)

	if len(result.Payments) > 12 {
		t.Errorf("payment count = %d, expected no trailing sub-cent payments beyond 12", len(result.Payments))
	}
}

func TestDefaultOptions(t *testing.T) {
	params := testParams(200000, 0, 5.0, 360, 0)
	opts := DefaultOptions(params)

	if opts.BatchSize != 50 {
		t.Errorf("batch size = %d, expected 50", opts.BatchSize)
	}
	if opts.MaxPayments != 720 {
		t.Errorf("max payments = %d, expected 2x360", opts.MaxPayments)
	}
	if opts.SnapTolerance != 0.01 {
		t.Errorf("snap tolerance = %v, expected 0.01", opts.SnapTolerance)
	}
}

func TestDefaultOptionsCeiling(t *testing.T) {
	// 600 months weekly is 2600 payments; 2x stays under the ceiling, but
	// an explicit factor can push it over.
	params := loan.FromValues(10000, 0, 5, 600, loan.Weekly, 0, 0,
		datetime.MustParseTime(datetime.DateLayout, "2026-01-01"))

	opts := Options{MaxPaymentsFactor: 10}.withDefaults(params)
	if opts.MaxPayments != 10000 {
		t.Errorf("max payments = %d, expected the 10000 ceiling", opts.MaxPayments)
	}
}

func TestFromPaymentsRebuildsAggregates(t *testing.T) {
	params := testParams(50000, 0, 4.0, 24, 0)
	original, err := Compute(nil, params, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rebuilt := FromPayments(original.Payments)
	if math.Abs(rebuilt.TotalInterest-original.TotalInterest) > 1e-9 {
		t.Errorf("rebuilt interest = %.6f, expected %.6f", rebuilt.TotalInterest, original.TotalInterest)
	}
	if math.Abs(rebuilt.TotalPayment-original.TotalPayment) > 1e-9 {
		t.Errorf("rebuilt total = %.6f, expected %.6f", rebuilt.TotalPayment, original.TotalPayment)
	}
	if !rebuilt.PayoffDate.Equal(original.PayoffDate.Time) {
		t.Errorf("rebuilt payoff = %v, expected %v", rebuilt.PayoffDate, original.PayoffDate)
	}
}
