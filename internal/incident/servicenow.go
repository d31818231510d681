package incident

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/metrics"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
)

const incidentTablePath = "/api/now/table/incident"

// ServiceNowFiler creates incidents through the ServiceNow table API
type ServiceNowFiler struct {
	instance   string
	user       string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewServiceNowFiler creates a filer for the configured instance.
// Requests are spaced by cfg.RatePerSecond; zero or less disables throttling.
func NewServiceNowFiler(cfg config.TicketingConfig, timeout time.Duration) *ServiceNowFiler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	slog.Info("Incident filer initialized",
		"mode", "servicenow",
		"instance", cfg.Instance,
		"ratePerSecond", cfg.RatePerSecond)

	return &ServiceNowFiler{
		instance:   cfg.Instance,
		user:       cfg.User,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// File posts the ticket. Transport errors, throttling cancellation and
// undecodable responses all yield an empty Ref.
func (f *ServiceNowFiler) File(ctx context.Context, ticket Ticket) Result {
	if err := f.limiter.Wait(ctx); err != nil {
		slog.Error("Incident filing throttled out", "error", err, "shortDescription", ticket.ShortDescription)
		metrics.IncidentsFiled.WithLabelValues("servicenow", "failed").Inc()
		return Result{}
	}

	body, err := json.Marshal(ticket)
	if err != nil {
		slog.Error("Failed to marshal incident", "error", err)
		metrics.IncidentsFiled.WithLabelValues("servicenow", "failed").Inc()
		return Result{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.instance+incidentTablePath, bytes.NewReader(body))
	if err != nil {
		slog.Error("Failed to create incident request", "error", err)
		metrics.IncidentsFiled.WithLabelValues("servicenow", "failed").Inc()
		return Result{}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(f.user, f.password)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		slog.Error("Incident request failed", "error", err, "shortDescription", ticket.ShortDescription)
		metrics.IncidentsFiled.WithLabelValues("servicenow", "failed").Inc()
		return Result{}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload map[string]any
	if err := json.Unmarshal(respBody, &payload); err != nil || payload == nil {
		slog.Warn("Incident response was not JSON",
			"statusCode", resp.StatusCode,
			"shortDescription", ticket.ShortDescription)
		metrics.IncidentsFiled.WithLabelValues("servicenow", "degraded").Inc()
		return Result{Payload: map[string]any{"status": resp.StatusCode, "text": string(respBody)}}
	}

	ref := refFrom(payload)
	slog.Info("Incident filed",
		"statusCode", resp.StatusCode,
		"number", ref.Number,
		"shortDescription", ticket.ShortDescription)

	if ref.IsZero() {
		metrics.IncidentsFiled.WithLabelValues("servicenow", "degraded").Inc()
	} else {
		metrics.IncidentsFiled.WithLabelValues("servicenow", "created").Inc()
	}
	return Result{Ref: ref, Payload: payload}
}

// refFrom reads sys_id and number from payload.result, falling back to the
// top level when result is absent or not an object
func refFrom(payload map[string]any) Ref {
	source := payload
	if nested, ok := payload["result"].(map[string]any); ok && len(nested) > 0 {
		source = nested
	}
	return Ref{
		SysID:  stringField(source, "sys_id"),
		Number: stringField(source, "number"),
	}
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
