// Package constants provides shared constants for the loan calculator.
package constants

import "time"

// DateLayout is the format used for payment dates in serialized schedules
// and config files.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Validation bounds for loan parameters
const (
	// MaxLoanAmount is the largest loan amount the generator accepts
	MaxLoanAmount = 100_000_000.0

	// MaxInterestRate is the largest annual interest rate in percent
	MaxInterestRate = 50.0

	// MaxTermMonths is the longest supported loan term
	MaxTermMonths = 600

	// DefaultTermMonths is the fallback term when input is non-positive
	DefaultTermMonths = 360
)

// Schedule generation defaults
const (
	// DefaultBatchSize is the number of payments between checkpoints
	DefaultBatchSize = 50

	// DefaultMaxPaymentsFactor scales the computed payment count into the
	// safety-valve ceiling
	DefaultMaxPaymentsFactor = 2.0

	// MaxPaymentsCeiling is the hard upper bound on generated payments
	MaxPaymentsCeiling = 10000

	// DefaultSnapTolerance is the balance below which the loan is
	// considered paid off, avoiding a tail of sub-cent payments
	DefaultSnapTolerance = 0.01

	// DefaultTimeout is the wall-clock budget for cooperative runs
	DefaultTimeout = 30 * time.Second

	// DefaultWorkerTimeout is the wall-clock budget for runs hosted in the
	// worker bridge when the request does not specify one
	DefaultWorkerTimeout = 5 * time.Second
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodyBytes is the default maximum request body size (256 KB)
	DefaultMaxBodyBytes int64 = 256 * 1024
)
