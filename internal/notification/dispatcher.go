package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/metrics"
)

// DefaultSinkTimeout bounds a single sink when none is configured
const DefaultSinkTimeout = 30 * time.Second

// Dispatcher sends a summary to every sink in order. A sink that fails,
// times out or panics is recorded in its Outcome and never stops the rest.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
}

// NewDispatcher creates a dispatcher; each sink gets its own timeout
func NewDispatcher(timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSinkTimeout
	}

	enabled := 0
	for _, s := range sinks {
		if s.Enabled() {
			enabled++
		}
	}

	slog.Info("Notification dispatcher initialized",
		"sinks", len(sinks),
		"enabled", enabled,
		"sinkTimeout", timeout)

	return &Dispatcher{sinks: sinks, timeout: timeout}
}

// Dispatch attempts every sink once and returns one Outcome per sink
func (d *Dispatcher) Dispatch(ctx context.Context, summary *Summary) []Outcome {
	outcomes := make([]Outcome, 0, len(d.sinks))

	for _, sink := range d.sinks {
		name := sink.Name()

		if !sink.Enabled() {
			slog.Info("Sink not configured, skipping", "sink", name)
			metrics.SinkDeliveries.WithLabelValues(name, string(StatusSkipped)).Inc()
			outcomes = append(outcomes, Outcome{Sink: name, Status: StatusSkipped})
			continue
		}

		start := time.Now()
		err := d.send(ctx, sink, summary)
		outcome := Outcome{Sink: name, Status: StatusSent, Err: err, Duration: time.Since(start)}

		if err != nil {
			outcome.Status = StatusFailed
			slog.Error("Failed to deliver summary",
				"error", err,
				"sink", name,
				"duration", outcome.Duration)
		} else {
			slog.Info("Summary delivered", "sink", name, "duration", outcome.Duration)
		}

		metrics.SinkDeliveries.WithLabelValues(name, string(outcome.Status)).Inc()
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

func (d *Dispatcher) send(ctx context.Context, sink Sink, summary *Summary) (err error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()

	return sink.Send(ctx, summary)
}
