// Package schedule implements the loan amortization schedule generator and
// its execution adapters. One canonical algorithm serves the inline,
// cooperative, and worker-hosted execution modes; only the driving of
// checkpoints differs between them.
package schedule

import (
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/datetime"
)

// Payment holds the values for a single amortization period. Amount is
// always the sum of Principal and Interest; Balance is the remaining
// principal after this payment.
type Payment struct {
	Number    int           `json:"number"`
	Date      datetime.Date `json:"date"`
	Amount    float64       `json:"amount"`
	Principal float64       `json:"principal"`
	Interest  float64       `json:"interest"`
	Balance   float64       `json:"balance"`
}

// Schedule is an ordered, chronologically sorted payment sequence plus
// aggregates. It is populated by the generator and should be treated as
// immutable once returned.
type Schedule struct {
	Payments      []Payment     `json:"payments"`
	TotalInterest float64       `json:"totalInterest"`
	TotalPayment  float64       `json:"totalPayment"`
	PayoffDate    datetime.Date `json:"payoffDate"`
}

// FromPayments rebuilds a Schedule, recomputing aggregates from the
// payment sequence. Used when re-materializing a schedule from its
// serialized form on the caller side of the worker bridge or the store.
func FromPayments(payments []Payment) *Schedule {
	s := &Schedule{Payments: payments}
	for _, p := range payments {
		s.TotalInterest += p.Interest
		s.TotalPayment += p.Amount
	}
	if n := len(payments); n > 0 {
		s.PayoffDate = payments[n-1].Date
	}
	return s
}
