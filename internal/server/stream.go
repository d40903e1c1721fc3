package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sm-coding-projects/loan-calculator-sub000/internal/worker"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The API carries no credentials; cross-origin reads are harmless.
		return true
	},
}

// streamFrame is one websocket message: a progress tick or the terminal
// complete/error frame, mirroring the worker bridge protocol.
type streamFrame struct {
	Kind      string          `json:"kind"`
	Percent   float64         `json:"percent,omitempty"`
	Message   string          `json:"message,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	ErrorKind string          `json:"errorKind,omitempty"`
}

// handleScheduleStream computes a schedule through the worker bridge and
// streams progress frames to the client. The client sends a single JSON
// request {kind, payload}; closing the connection cancels the computation.
func (h *handler) handleScheduleStream(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		http.Error(w, "streaming not available", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("op", "server.handleScheduleStream"),
			zap.Error(err),
		)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	var req struct {
		Kind    worker.Kind     `json:"kind"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(streamFrame{
			Kind:      string(worker.KindError),
			ErrorKind: string(schedule.KindWorkerProtocol),
			Message:   "malformed stream request",
		})
		return
	}

	// Cancel the computation if the client goes away. Reads also consume
	// close frames so the websocket state machine keeps working.
	ctx, cancel := contextWithConnClose(r, conn)
	defer cancel()

	result, err := h.bridge.Calculate(ctx, req.Kind, req.Payload,
		func(percent float64, message string) {
			// Calculate invokes this from its own receive loop, so writes
			// are naturally serialized.
			_ = conn.WriteJSON(streamFrame{
				Kind:    string(worker.KindProgress),
				Percent: percent,
				Message: message,
			})
		})
	if err != nil {
		_ = conn.WriteJSON(streamFrame{
			Kind:      string(worker.KindError),
			ErrorKind: string(schedule.KindOf(err)),
			Message:   err.Error(),
		})
		return
	}

	_ = conn.WriteJSON(streamFrame{
		Kind:   string(worker.KindComplete),
		Result: result,
	})
}

// contextWithConnClose returns a context cancelled when the websocket peer
// disconnects. The reader goroutine also services control frames.
func contextWithConnClose(r *http.Request, conn *websocket.Conn) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(r.Context())
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()
	return ctx, cancel
}
