package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/queue"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/report"
)

// RunEvent is the message published when a run has been persisted
type RunEvent struct {
	RunID          string       `json:"runId"`
	RunTime        string       `json:"runTime"`
	OUCount        int          `json:"ouCount"`
	TotalIssues    int          `json:"totalIssues"`
	IncidentsFiled int          `json:"incidentsFiled"`
	FailedOUs      int          `json:"failedOus"`
	PublishedAt    time.Time    `json:"publishedAt"`
	Rows           []report.Row `json:"rows"`
}

// NewRunEvent summarizes the rows into an event
func NewRunEvent(summary *Summary) RunEvent {
	ev := RunEvent{
		RunID:       summary.RunID,
		RunTime:     summary.RunTime,
		OUCount:     len(summary.Rows),
		PublishedAt: time.Now().UTC(),
		Rows:        summary.Rows,
	}
	for _, row := range summary.Rows {
		ev.TotalIssues += row.TotalIssues
		if row.SnowIncidentNumber != "" {
			ev.IncidentsFiled++
		}
		if row.CollectionError != "" {
			ev.FailedOUs++
		}
	}
	return ev
}

// PublisherFactory opens a publisher for one delivery
type PublisherFactory func(ctx context.Context) (queue.Publisher, error)

// EventSink publishes a RunEvent to a broker. The run time is the
// deduplication id, so replaying a run publishes nothing new.
type EventSink struct {
	name    string
	subject string
	open    PublisherFactory
}

// NewEventSink creates an event sink; a nil factory disables it
func NewEventSink(name, subject string, open PublisherFactory) *EventSink {
	return &EventSink{name: name, subject: subject, open: open}
}

func (s *EventSink) Name() string  { return s.name }
func (s *EventSink) Enabled() bool { return s.open != nil }

// Send opens the publisher, publishes the event and closes it
func (s *EventSink) Send(ctx context.Context, summary *Summary) error {
	data, err := json.Marshal(NewRunEvent(summary))
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	pub, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	defer pub.Close()

	if err := pub.PublishWithDeduplication(ctx, s.subject, data, summary.RunTime); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}
