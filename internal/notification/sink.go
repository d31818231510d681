// Package notification fans the run summary out to the configured sinks.
package notification

import (
	"context"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/report"
)

// Summary is what every sink receives after the report is persisted
type Summary struct {
	RunID   string
	RunTime string

	// Subject is the email subject and chat title
	Subject string

	// Text is the plain-text summary
	Text string

	Rows []report.Row
}

// NewSummary builds the summary for a persisted report
func NewSummary(runID string, rep *report.Report) *Summary {
	rows := rep.Rows
	if rows == nil {
		rows = []report.Row{}
	}
	return &Summary{
		RunID:   runID,
		RunTime: rep.RunTime,
		Subject: report.Title,
		Text:    rep.Summary(),
		Rows:    rows,
	}
}

// Sink delivers a summary to one destination
type Sink interface {
	// Name identifies the sink in logs, metrics and outcomes
	Name() string

	// Enabled reports whether the sink has the configuration it needs
	Enabled() bool

	// Send delivers the summary. It is called at most once per run.
	Send(ctx context.Context, summary *Summary) error
}

// Status is the result of one sink's delivery attempt
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one sink
type Outcome struct {
	Sink     string
	Status   Status
	Err      error
	Duration time.Duration
}
