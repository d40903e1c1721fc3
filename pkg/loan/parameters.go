// Package loan defines the validated loan parameter model and the pure
// financial calculations derived from it.
package loan

import (
	"fmt"
	"math"
	"time"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/constants"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/datetime"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/mathutil"
)

// Frequency determines how many payments occur per year and how payment
// dates advance.
type Frequency string

// Recognized payment frequencies.
const (
	Monthly  Frequency = "monthly"
	BiWeekly Frequency = "bi-weekly"
	Weekly   Frequency = "weekly"
)

// Recognized loan types. The type does not affect the math; it is carried
// for callers that label schedules.
const (
	TypeMortgage = "mortgage"
	TypeAuto     = "auto"
	TypePersonal = "personal"
	TypeStudent  = "student"
)

// InvalidEnumError reports an unrecognized enum value in raw input.
type InvalidEnumError struct {
	Field string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// ParseFrequency validates a raw frequency string. An empty string maps to
// Monthly.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case "":
		return Monthly, nil
	case Monthly, BiWeekly, Weekly:
		return Frequency(s), nil
	default:
		return "", &InvalidEnumError{Field: "paymentFrequency", Value: s}
	}
}

// PaymentsPerYear returns the number of payments made per year.
func (f Frequency) PaymentsPerYear() int {
	switch f {
	case Weekly:
		return 52
	case BiWeekly:
		return 26
	default:
		return constants.MonthsPerYear
	}
}

// Interval returns the date-advance rule as (calendar months, days) per
// payment period.
func (f Frequency) Interval() (months, days int) {
	switch f {
	case Weekly:
		return 0, 7
	case BiWeekly:
		return 0, 14
	default:
		return 1, 0
	}
}

// Raw holds unvalidated loan input as it arrives from config files or API
// requests.
type Raw struct {
	Type              string  `json:"type,omitempty" yaml:"type,omitempty"`
	Principal         float64 `json:"principal" yaml:"principal"`
	DownPayment       float64 `json:"downPayment" yaml:"downPayment"`
	InterestRate      float64 `json:"interestRate" yaml:"interestRate"`
	TermMonths        int     `json:"termMonths" yaml:"termMonths"`
	PaymentFrequency  string  `json:"paymentFrequency,omitempty" yaml:"paymentFrequency,omitempty"`
	AdditionalPayment float64 `json:"additionalPayment,omitempty" yaml:"additionalPayment,omitempty"`
	InflationRate     float64 `json:"inflationRate,omitempty" yaml:"inflationRate,omitempty"`
	StartDate         string  `json:"startDate,omitempty" yaml:"startDate,omitempty"`
}

// Parameters is the immutable, validated loan parameter model. Construct
// with New or FromValues; all getters are pure.
type Parameters struct {
	loanType          string
	principal         float64
	downPayment       float64
	interestRate      float64
	termMonths        int
	frequency         Frequency
	additionalPayment float64
	inflationRate     float64
	startDate         time.Time
}

// New builds Parameters from raw input. Out-of-range numeric fields are
// clamped to documented defaults rather than rejected so that bad UI input
// degrades gracefully; only an unrecognized paymentFrequency or type fails,
// with an InvalidEnumError. A missing or malformed startDate falls back to
// the current date.
func New(raw Raw) (Parameters, error) {
	return NewWithFixedTime(raw, time.Now())
}

// NewWithFixedTime is New with an injectable current time for testing.
func NewWithFixedTime(raw Raw, fixedTime time.Time) (Parameters, error) {
	freq, err := ParseFrequency(raw.PaymentFrequency)
	if err != nil {
		return Parameters{}, err
	}

	switch raw.Type {
	case "", TypeMortgage, TypeAuto, TypePersonal, TypeStudent:
	default:
		return Parameters{}, &InvalidEnumError{Field: "type", Value: raw.Type}
	}

	p := Parameters{
		loanType:     raw.Type,
		principal:    mathutil.Clamp(raw.Principal, 0, constants.MaxLoanAmount),
		interestRate: mathutil.Clamp(raw.InterestRate, 0, constants.MaxInterestRate),
		frequency:    freq,
	}
	p.downPayment = mathutil.Clamp(raw.DownPayment, 0, p.principal)
	p.additionalPayment = math.Max(0, raw.AdditionalPayment)
	p.inflationRate = math.Max(0, raw.InflationRate)

	switch {
	case raw.TermMonths <= 0:
		p.termMonths = constants.DefaultTermMonths
	case raw.TermMonths > constants.MaxTermMonths:
		p.termMonths = constants.MaxTermMonths
	default:
		p.termMonths = raw.TermMonths
	}

	if raw.StartDate == "" {
		p.startDate = datetime.NewDate(fixedTime).Time
	} else {
		t, err := time.Parse(datetime.DateLayout, raw.StartDate)
		if err != nil {
			p.startDate = datetime.NewDate(fixedTime).Time
		} else {
			p.startDate = t
		}
	}

	return p, nil
}

// FromValues builds Parameters directly without clamping. Callers that want
// out-of-range values surfaced as typed validation errors pass the result
// to the schedule generator, which checks its own preconditions.
func FromValues(principal, downPayment, interestRate float64, termMonths int,
	frequency Frequency, additionalPayment, inflationRate float64, startDate time.Time) Parameters {
	if frequency == "" {
		frequency = Monthly
	}
	return Parameters{
		principal:         principal,
		downPayment:       downPayment,
		interestRate:      interestRate,
		termMonths:        termMonths,
		frequency:         frequency,
		additionalPayment: additionalPayment,
		inflationRate:     inflationRate,
		startDate:         datetime.NewDate(startDate).Time,
	}
}

// Type returns the loan type label, empty when unspecified.
func (p Parameters) Type() string { return p.loanType }

// Principal returns the loan principal before down payment.
func (p Parameters) Principal() float64 { return p.principal }

// DownPayment returns the up-front payment.
func (p Parameters) DownPayment() float64 { return p.downPayment }

// InterestRate returns the annual interest rate in percent.
func (p Parameters) InterestRate() float64 { return p.interestRate }

// TermMonths returns the loan term in months.
func (p Parameters) TermMonths() int { return p.termMonths }

// PaymentFrequency returns the payment frequency.
func (p Parameters) PaymentFrequency() Frequency { return p.frequency }

// AdditionalPayment returns the extra principal applied each period.
func (p Parameters) AdditionalPayment() float64 { return p.additionalPayment }

// InflationRate returns the annual inflation rate in percent; 0 disables
// present-value adjustment.
func (p Parameters) InflationRate() float64 { return p.inflationRate }

// StartDate returns the date of the first payment.
func (p Parameters) StartDate() time.Time { return p.startDate }

// LoanAmount returns the financed amount after the down payment.
func (p Parameters) LoanAmount() float64 {
	return p.principal - p.downPayment
}

// PaymentsPerYear returns the number of payments per year for the
// configured frequency.
func (p Parameters) PaymentsPerYear() int {
	return p.frequency.PaymentsPerYear()
}

// PeriodicRate returns the per-period interest rate.
func (p Parameters) PeriodicRate() float64 {
	return p.interestRate / constants.PercentageMultiplier / float64(p.PaymentsPerYear())
}

// NumberOfPayments returns the scheduled payment count for the term and
// frequency.
func (p Parameters) NumberOfPayments() int {
	return int(math.Ceil(float64(p.termMonths) * float64(p.PaymentsPerYear()) / constants.MonthsPerYear))
}

// RegularPayment calculates the per-period payment using the standard
// amortization formula. It is 0 when the loan amount is not positive and
// degrades to simple division when the periodic rate is not positive.
func (p Parameters) RegularPayment() float64 {
	amount := p.LoanAmount()
	n := p.NumberOfPayments()
	if amount <= 0 || n <= 0 {
		return 0
	}

	rate := p.PeriodicRate()
	if rate <= 0 {
		// For zero interest, simply divide the amount by the payment count
		return amount / float64(n)
	}

	power := math.Pow(1.00+rate, float64(n))
	discountFactor := (power - 1.00) / power
	return amount * rate / discountFactor
}

// PaymentDate returns the date of the payment with the given 1-based
// number.
func (p Parameters) PaymentDate(number int) time.Time {
	months, days := p.frequency.Interval()
	return datetime.AdvanceDate(p.startDate, months, days, number-1)
}
