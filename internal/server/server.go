// Package server exposes the schedule engine over HTTP: JSON endpoints
// for inline computation and a websocket endpoint that streams progress
// from the worker bridge.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sm-coding-projects/loan-calculator-sub000/internal/store"
	"github.com/sm-coding-projects/loan-calculator-sub000/internal/worker"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/constants"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/inflation"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/loan"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
	"go.uber.org/zap"
)

type handler struct {
	logger       *zap.Logger
	bridge       *worker.Bridge
	store        store.Store
	options      schedule.Options
	maxBodyBytes int64
	version      string
}

// NewHandler constructs the HTTP handler serving the schedule API.
func NewHandler(logger *zap.Logger, bridge *worker.Bridge, st store.Store,
	options schedule.Options, maxBodyBytes int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = constants.DefaultMaxBodyBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:       logger,
		bridge:       bridge,
		store:        st,
		options:      options,
		maxBodyBytes: maxBodyBytes,
		version:      trimmedVersion,
	}

	mux := http.NewServeMux()

	// Inline schedule computation (blocks the request)
	mux.HandleFunc("/api/schedule", h.handleSchedule)

	// Payment amount and derived figures only
	mux.HandleFunc("/api/payment", h.handlePayment)

	// Present-value adjustment over a completed schedule
	mux.HandleFunc("/api/inflation", h.handleInflation)

	// Worker-backed computation with progress streamed over a websocket
	mux.HandleFunc("/api/schedule/stream", h.handleScheduleStream)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type scheduleRequest struct {
	Params  loan.Raw          `json:"params"`
	Options *schedule.Options `json:"options,omitempty"`
	LoanID  string            `json:"loanId,omitempty"`
}

type scheduleResponse struct {
	LoanID   string             `json:"loanId"`
	Schedule *schedule.Schedule `json:"schedule"`
	Duration string             `json:"duration"`
}

type errorResponse struct {
	ErrorKind string `json:"errorKind,omitempty"`
	Error     string `json:"error"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodGet:
		h.handleScheduleLookup(w, r)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req scheduleRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	params, err := loan.New(req.Params)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := h.options
	if req.Options != nil {
		opts = *req.Options
	}

	start := time.Now()
	result, err := schedule.Compute(h.logger, params, opts)
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}

	loanID := req.LoanID
	if loanID == "" {
		loanID = uuid.NewString()
	}
	if h.store != nil {
		if err := h.store.Save(r.Context(), loanID, result); err != nil {
			h.logger.Warn("failed to persist schedule",
				zap.String("op", "server.handleSchedule"),
				zap.String("loanId", loanID),
				zap.Error(err),
			)
		}
	}

	h.writeJSON(w, http.StatusOK, scheduleResponse{
		LoanID:   loanID,
		Schedule: result,
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleScheduleLookup(w http.ResponseWriter, r *http.Request) {
	loanID := r.URL.Query().Get("loanId")
	if loanID == "" {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("missing loanId"))
		return
	}
	if h.store == nil {
		h.writeError(w, http.StatusNotFound, store.ErrNotFound)
		return
	}

	s, err := h.store.Load(r.Context(), loanID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrMalformed) {
			status = http.StatusNotFound
		}
		h.writeError(w, status, err)
		return
	}
	h.writeJSON(w, http.StatusOK, scheduleResponse{LoanID: loanID, Schedule: s})
}

type paymentResponse struct {
	RegularPayment   float64 `json:"regularPayment"`
	PeriodicRate     float64 `json:"periodicRate"`
	NumberOfPayments int     `json:"numberOfPayments"`
	LoanAmount       float64 `json:"loanAmount"`
}

func (h *handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var raw loan.Raw
	if !h.decodeBody(w, r, &raw) {
		return
	}

	params, err := loan.New(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	h.writeJSON(w, http.StatusOK, paymentResponse{
		RegularPayment:   params.RegularPayment(),
		PeriodicRate:     params.PeriodicRate(),
		NumberOfPayments: params.NumberOfPayments(),
		LoanAmount:       params.LoanAmount(),
	})
}

type inflationRequest struct {
	Schedule   *schedule.Schedule `json:"schedule"`
	AnnualRate float64            `json:"annualRate"`
}

func (h *handler) handleInflation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req inflationRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Schedule == nil || len(req.Schedule.Payments) == 0 {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("missing schedule payments"))
		return
	}

	s := schedule.FromPayments(req.Schedule.Payments)
	h.writeJSON(w, http.StatusOK, inflation.Adjust(s, req.AnnualRate))
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

// writeScheduleError maps the engine's error taxonomy onto HTTP statuses:
// precondition failures are client errors, timeouts map to 504, and
// anything else is a server error.
func (h *handler) writeScheduleError(w http.ResponseWriter, err error) {
	kind := schedule.KindOf(err)
	status := http.StatusInternalServerError
	switch {
	case kind.IsValidation():
		status = http.StatusBadRequest
	case kind == schedule.KindMaxPaymentsExceeded:
		status = http.StatusUnprocessableEntity
	case kind == schedule.KindTimeout:
		status = http.StatusGatewayTimeout
	}
	h.writeError(w, status, err)
}

func (h *handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{
		ErrorKind: string(schedule.KindOf(err)),
		Error:     err.Error(),
	})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
