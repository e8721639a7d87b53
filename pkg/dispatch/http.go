package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPConfig contains configuration for the HTTP executor adapter.
type HTTPConfig struct {
	// Endpoint is the external executor's URL. Actions are POSTed to it.
	Endpoint string

	// Timeout bounds one dispatch round trip. Default: 30 seconds.
	Timeout time.Duration

	// MaxIdleConns configures the connection pool. Default: 10.
	MaxIdleConns int
}

// DefaultHTTPConfig returns the default HTTP executor configuration.
func DefaultHTTPConfig(endpoint string) *HTTPConfig {
	return &HTTPConfig{
		Endpoint:     endpoint,
		Timeout:      30 * time.Second,
		MaxIdleConns: 10,
	}
}

// HTTPExecutor dispatches actions to an external executor over HTTP. The
// request body is the action plus the correlation id; the response body is
// decoded into the observed effect.
type HTTPExecutor struct {
	config *HTTPConfig
	client *http.Client
	logger *slog.Logger
}

// NewHTTPExecutor creates an HTTP executor adapter.
func NewHTTPExecutor(config *HTTPConfig) *HTTPExecutor {
	transport := &http.Transport{
		MaxIdleConns:      config.MaxIdleConns,
		ForceAttemptHTTP2: true,
	}
	return &HTTPExecutor{
		config: config,
		client: &http.Client{Transport: transport, Timeout: config.Timeout},
		logger: slog.Default().With("component", "dispatch.http"),
	}
}

// dispatchRequest is the wire shape POSTed to the executor.
type dispatchRequest struct {
	CorrelationID string `json:"correlationId"`
	Action        Action `json:"action"`
}

// dispatchResponse is the wire shape expected back.
type dispatchResponse struct {
	Status     string         `json:"status"`
	Delta      map[string]any `json:"effectDelta,omitempty"`
	ObservedAt time.Time      `json:"observedAt"`
}

// Execute POSTs the action to the configured endpoint and reports the
// observed effect.
func (e *HTTPExecutor) Execute(ctx context.Context, correlationID string, action Action) (*Effect, error) {
	body, err := json.Marshal(dispatchRequest{CorrelationID: correlationID, Action: action})
	if err != nil {
		return nil, &Error{Code: "executor-error", Message: "failed to encode action", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Code: "executor-error", Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", correlationID)

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &Error{Code: "executor-unreachable", Message: "dispatch request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			Code:    "executor-rejected",
			Message: fmt.Sprintf("executor returned status %d", resp.StatusCode),
		}
	}

	var out dispatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Code: "executor-error", Message: "failed to decode effect", Cause: err}
	}
	if out.ObservedAt.IsZero() {
		out.ObservedAt = time.Now().UTC()
	}
	if out.Status == "" {
		out.Status = StatusCompleted
	}

	e.logger.Debug("action dispatched",
		"correlation_id", correlationID,
		"intent_id", action.IntentID,
		"status", out.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Effect{
		Status:     out.Status,
		Delta:      out.Delta,
		ObservedAt: out.ObservedAt.UTC(),
	}, nil
}
