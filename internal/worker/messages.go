package worker

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/loan"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
)

// Kind identifies a message crossing the bridge.
type Kind string

// Request kinds.
const (
	KindCalculateAmortization Kind = "calculateAmortization"
	KindCalculatePayment      Kind = "calculatePayment"
	KindCalculateInflation    Kind = "calculateInflation"
	KindCancel                Kind = "cancel"
)

// Response kinds.
const (
	KindProgress Kind = "progress"
	KindComplete Kind = "complete"
	KindError    Kind = "error"
)

// Request is the caller-to-worker message. Payload is JSON so that all
// data crosses the boundary as a structural copy with no shared memory.
type Request struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	ID      string          `json:"correlationId"`
}

// Response is the worker-to-caller message. Exactly one terminal response
// (complete or error) is delivered per request id, always last.
type Response struct {
	Kind      Kind            `json:"kind"`
	ID        string          `json:"correlationId"`
	Percent   float64         `json:"percent,omitempty"`
	Message   string          `json:"message,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	ErrorKind string          `json:"errorKind,omitempty"`
}

// AmortizationPayload is the payload for calculateAmortization requests.
type AmortizationPayload struct {
	Params  loan.Raw         `json:"params"`
	Options schedule.Options `json:"options"`
}

// PaymentPayload is the payload for calculatePayment requests.
type PaymentPayload struct {
	Params loan.Raw `json:"params"`
}

// PaymentResult is the result of a calculatePayment request.
type PaymentResult struct {
	RegularPayment   float64 `json:"regularPayment"`
	PeriodicRate     float64 `json:"periodicRate"`
	NumberOfPayments int     `json:"numberOfPayments"`
}

// InflationPayload is the payload for calculateInflation requests. The
// schedule travels in its serialized form; the worker re-materializes it.
type InflationPayload struct {
	Schedule   *schedule.Schedule `json:"schedule"`
	AnnualRate float64            `json:"annualRate"`
}

// NewID returns a fresh correlation id.
func NewID() string {
	return uuid.NewString()
}
