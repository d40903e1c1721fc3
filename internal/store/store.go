// Package store persists serialized amortization schedules. It is the
// engine's storage collaborator: the engine hands it completed schedules
// and re-materializes them on load, regenerating when the stored form is
// missing or malformed rather than failing hard.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/loan"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
	"go.uber.org/zap"
)

// ErrNotFound indicates no schedule is stored under the loan id.
var ErrNotFound = errors.New("schedule not found")

// ErrMalformed indicates the stored document could not be decoded into a
// payment sequence.
var ErrMalformed = errors.New("stored schedule is malformed")

// Store persists schedules keyed by loan id.
type Store interface {
	Save(ctx context.Context, loanID string, s *schedule.Schedule) error
	Load(ctx context.Context, loanID string) (*schedule.Schedule, error)
	Delete(ctx context.Context, loanID string) error
}

// document is the serialized schedule form: loan id plus the payment
// sequence with ISO-8601 dates. Aggregates are recomputed on load.
type document struct {
	LoanID   string             `json:"loanId"`
	Payments []schedule.Payment `json:"payments"`
}

// Encode serializes a schedule for persistence.
func Encode(loanID string, s *schedule.Schedule) ([]byte, error) {
	return json.Marshal(document{LoanID: loanID, Payments: s.Payments})
}

// Decode re-materializes a schedule from its serialized form. A missing or
// malformed payments field returns ErrMalformed so callers can fall back
// to regeneration.
func Decode(data []byte) (string, *schedule.Schedule, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(doc.Payments) == 0 {
		return doc.LoanID, nil, fmt.Errorf("%w: missing payments", ErrMalformed)
	}
	return doc.LoanID, schedule.FromPayments(doc.Payments), nil
}

// LoadOrRegenerate loads the stored schedule for loanID, regenerating it
// from the loan parameters when the stored form is absent or malformed.
// Regenerated schedules are saved back so subsequent loads hit the store.
func LoadOrRegenerate(ctx context.Context, logger *zap.Logger, st Store, loanID string,
	params loan.Parameters, opts schedule.Options) (*schedule.Schedule, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s, err := st.Load(ctx, loanID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrMalformed) {
		return nil, err
	}

	logger.Debug("regenerating schedule",
		zap.String("op", "store.LoadOrRegenerate"),
		zap.String("loanId", loanID),
		zap.Error(err),
	)

	s, genErr := schedule.Compute(logger, params, opts)
	if genErr != nil {
		return nil, genErr
	}
	if saveErr := st.Save(ctx, loanID, s); saveErr != nil {
		// Persistence is best effort here; the regenerated schedule is
		// still valid for the caller.
		logger.Warn("failed to save regenerated schedule",
			zap.String("op", "store.LoadOrRegenerate"),
			zap.String("loanId", loanID),
			zap.Error(saveErr),
		)
	}
	return s, nil
}
