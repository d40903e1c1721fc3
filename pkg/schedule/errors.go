package schedule

import (
	"errors"
	"fmt"
)

// ErrorKind classifies schedule generation failures so callers can branch
// on taxonomy instead of parsing messages.
type ErrorKind string

const (
	// KindAmountOutOfRange indicates a loan amount outside (0, 100,000,000].
	KindAmountOutOfRange ErrorKind = "AmountOutOfRange"

	// KindRateOutOfRange indicates an interest rate outside [0, 50].
	KindRateOutOfRange ErrorKind = "RateOutOfRange"

	// KindTermOutOfRange indicates a term outside (0, 600] months.
	KindTermOutOfRange ErrorKind = "TermOutOfRange"

	// KindPaymentTooLowForInterest indicates the regular payment cannot
	// cover the periodic interest, so the balance would never amortize.
	KindPaymentTooLowForInterest ErrorKind = "PaymentTooLowForInterest"

	// KindMaxPaymentsExceeded indicates the loop safety valve tripped.
	KindMaxPaymentsExceeded ErrorKind = "MaxPaymentsExceeded"

	// KindTimeout indicates a cooperative run exceeded its wall-clock budget.
	KindTimeout ErrorKind = "Timeout"

	// KindCancelled indicates a caller-initiated cancellation.
	KindCancelled ErrorKind = "Cancelled"

	// KindWorkerProtocol indicates a malformed or out-of-order message
	// across the worker bridge; fatal for that request id only.
	KindWorkerProtocol ErrorKind = "WorkerProtocolError"
)

// Error is a typed schedule generation failure. The kind survives
// serialization across the worker bridge.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError constructs a typed Error.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from an error chain; it returns the empty
// string when the error is not a schedule Error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsValidation reports whether the kind is a precondition failure detected
// before any payment is generated.
func (k ErrorKind) IsValidation() bool {
	switch k {
	case KindAmountOutOfRange, KindRateOutOfRange, KindTermOutOfRange, KindPaymentTooLowForInterest:
		return true
	}
	return false
}
