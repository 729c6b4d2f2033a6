// Package handler exposes the operator surface of the resilience core:
// circuit breaker state, manual resets, and queued operation inspection.
package handler

import (
	"net/http"

	"tourbook/internal/queue"
	"tourbook/internal/resilience/health"
	apperrors "tourbook/pkg/errors"
	httputil "tourbook/pkg/http"
	"tourbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type OpsHandler struct {
	monitor *health.Monitor
	queue   *queue.Service
	log     *logger.Logger
}

func NewOpsHandler(monitor *health.Monitor, queueSvc *queue.Service, log *logger.Logger) *OpsHandler {
	return &OpsHandler{
		monitor: monitor,
		queue:   queueSvc,
		log:     log,
	}
}

func (h *OpsHandler) CircuitBreakers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	states, err := h.monitor.Snapshot(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.Internal("Failed to read circuit breaker states", err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CircuitBreakers", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, states); err != nil {
		h.log.Error("failed to write success response", "handler", "CircuitBreakers", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OpsHandler) ResetCircuitBreaker(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	if name == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Dependency name cannot be empty")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ResetCircuitBreaker", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.monitor.Reset(r.Context(), name); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.Internal("Failed to reset circuit breaker", err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ResetCircuitBreaker", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *OpsHandler) GetOperation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	op, err := h.queue.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetOperation", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, op); err != nil {
		h.log.Error("failed to write success response", "handler", "GetOperation", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OpsHandler) QueueStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	counts, err := h.queue.Counts(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "QueueStats", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, counts); err != nil {
		h.log.Error("failed to write success response", "handler", "QueueStats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OpsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/ops/circuit-breakers", h.CircuitBreakers)
	router.POST("/api/v1/ops/circuit-breakers/:name/reset", h.ResetCircuitBreaker)
	router.GET("/api/v1/ops/operations/:id", h.GetOperation)
	router.GET("/api/v1/ops/queue/stats", h.QueueStats)
}
