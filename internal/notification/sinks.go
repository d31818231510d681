package notification

import (
	"context"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/queue"
	natsqueue "github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/queue/nats"
	sqsqueue "github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/queue/sqs"
)

// FromConfig builds every sink in dispatch order. Unconfigured sinks are
// included but disabled, so they show up as skipped outcomes.
func FromConfig(cfg *config.Config) []Sink {
	var natsOpen, sqsOpen PublisherFactory

	if cfg.Events.NATSURL != "" {
		natsCfg := queue.NATSConfig{
			URL:        cfg.Events.NATSURL,
			StreamName: natsqueue.DefaultStreamName,
			Subjects:   []string{cfg.Events.Subject},
		}
		natsOpen = func(ctx context.Context) (queue.Publisher, error) {
			return natsqueue.Connect(ctx, natsCfg)
		}
	}

	if cfg.Events.SQSQueueURL != "" {
		sqsCfg := queue.SQSConfig{
			QueueURL: cfg.Events.SQSQueueURL,
			Region:   cfg.Events.AWSRegion,
		}
		sqsOpen = func(ctx context.Context) (queue.Publisher, error) {
			return sqsqueue.NewPublisher(ctx, sqsCfg)
		}
	}

	return []Sink{
		NewPowerBISink(cfg.PowerBI.PushURL, cfg.HTTPTimeout),
		NewTeamsSink(cfg.Teams.WebhookURL, cfg.HTTPTimeout),
		NewEmailSink(cfg.Email),
		NewEventSink("nats-events", cfg.Events.Subject, natsOpen),
		NewEventSink("sqs-events", cfg.Events.Subject, sqsOpen),
		NewArchiveSink(cfg.Archive),
	}
}
