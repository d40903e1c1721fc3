// Package inflation adjusts completed amortization schedules into
// present-value figures. The transform is a pure post-processing pass: it
// never mutates its input and is safe to run any number of times over the
// same schedule.
package inflation

import (
	"math"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/constants"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
)

// AdjustedPayment extends a completed payment with its inflation discount
// factor and present-value figures.
type AdjustedPayment struct {
	schedule.Payment
	InflationFactor   float64 `json:"inflationFactor"`
	AdjustedAmount    float64 `json:"adjustedAmount"`
	AdjustedPrincipal float64 `json:"adjustedPrincipal"`
	AdjustedInterest  float64 `json:"adjustedInterest"`
}

// AdjustedSchedule holds the per-payment adjusted figures plus summary
// totals.
type AdjustedSchedule struct {
	Payments      []AdjustedPayment `json:"payments"`
	TotalOriginal float64           `json:"totalOriginal"`
	TotalAdjusted float64           `json:"totalAdjusted"`
	Savings       float64           `json:"savings"`
}

// MonthlyRate converts an annual inflation rate in percent into the
// equivalent compounded monthly rate.
func MonthlyRate(annualRate float64) float64 {
	return math.Pow(1+annualRate/constants.PercentageMultiplier, 1.0/constants.MonthsPerYear) - 1
}

// Adjust produces the present-value view of a completed schedule. The
// factor for the payment at zero-based index i is (1+monthlyRate)^-i, so
// the first payment's factor is exactly 1.
func Adjust(s *schedule.Schedule, annualRate float64) *AdjustedSchedule {
	monthlyRate := MonthlyRate(annualRate)

	adjusted := &AdjustedSchedule{
		Payments: make([]AdjustedPayment, 0, len(s.Payments)),
	}
	for i, payment := range s.Payments {
		factor := math.Pow(1+monthlyRate, -float64(i))
		adjusted.Payments = append(adjusted.Payments, AdjustedPayment{
			Payment:           payment,
			InflationFactor:   factor,
			AdjustedAmount:    payment.Amount * factor,
			AdjustedPrincipal: payment.Principal * factor,
			AdjustedInterest:  payment.Interest * factor,
		})
		adjusted.TotalOriginal += payment.Amount
		adjusted.TotalAdjusted += payment.Amount * factor
	}
	adjusted.Savings = adjusted.TotalOriginal - adjusted.TotalAdjusted
	return adjusted
}
