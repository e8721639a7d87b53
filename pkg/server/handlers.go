package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"sentinel-hq/janus/pkg/gate"
)

// submission is the body of POST /v1/intents: the raw intent document and
// the raw referenced-state document, passed through to the gate untouched.
type submission struct {
	Intent json.RawMessage `json:"intent"`
	State  json.RawMessage `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// submitHandler runs one execution cycle per request and returns the issued
// decision. A cycle that halts is still a completed cycle; the decision
// document is the response either way.
type submitHandler struct {
	controller *gate.Controller
	maxBody    int64
	logger     *slog.Logger
}

func newSubmitHandler(controller *gate.Controller, maxBody int64) *submitHandler {
	return &submitHandler{
		controller: controller,
		maxBody:    maxBody,
		logger:     slog.Default().With("component", "server.submit"),
	}
}

func (h *submitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}
	if int64(len(body)) > h.maxBody {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
		return
	}

	var sub submission
	if err := json.Unmarshal(body, &sub); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body is not valid JSON"})
		return
	}
	if len(sub.Intent) == 0 || len(sub.State) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "intent and state are required"})
		return
	}

	decision, err := h.controller.Process(r.Context(), sub.Intent, sub.State)
	if err != nil {
		h.logger.Error("cycle failed before a decision could be issued",
			"request_id", GetRequestID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "an internal error occurred"})
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

// HealthChecker reports whether a component is able to do its job.
type HealthChecker interface {
	Healthy() bool
}

// healthHandler is the liveness probe: the process is up.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyHandler is the readiness probe. The gate refuses no traffic while the
// audit sink is failing, but readiness degrades so operators see it.
type readyHandler struct {
	audit HealthChecker
}

func (h *readyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.audit != nil && !h.audit.Healthy() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"detail": "audit sink is not accepting appends",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
