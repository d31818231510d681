// Package nats provides the NATS JetStream publisher
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/queue"
)

// DefaultStreamName captures run events when no stream is configured
const DefaultStreamName = "WMS_MONITOR"

// Publisher publishes messages to NATS JetStream
type Publisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream string
}

var _ queue.Publisher = (*Publisher)(nil)

// Connect dials the server and makes sure the stream exists
func Connect(ctx context.Context, cfg queue.NATSConfig) (*Publisher, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.StreamName == "" {
		cfg.StreamName = DefaultStreamName
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("wms-monitor"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(2),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{conn: conn, js: js, stream: cfg.StreamName}
	if err := p.ensureStream(ctx, cfg.Subjects); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Debug("NATS publisher connected", "url", cfg.URL, "stream", cfg.StreamName)
	return p, nil
}

// ensureStream creates the stream when it is missing. An existing stream is
// left as operators configured it.
func (p *Publisher) ensureStream(ctx context.Context, subjects []string) error {
	if _, err := p.js.Stream(ctx, p.stream); err == nil {
		return nil
	}

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:       p.stream,
		Subjects:   subjects,
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     30 * 24 * time.Hour,
		Duplicates: 24 * time.Hour,
		Replicas:   1,
		Discard:    jetstream.DiscardOld,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", p.stream, err)
	}

	slog.Info("Created JetStream stream", "stream", p.stream, "subjects", subjects)
	return nil
}

// Publish sends a message to the specified subject
func (p *Publisher) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishWithDeduplication sends a message with a Nats-Msg-Id header
func (p *Publisher) PublishWithDeduplication(ctx context.Context, subject string, data []byte, deduplicationID string) error {
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(deduplicationID))
	if err != nil {
		return fmt.Errorf("failed to publish message with deduplication: %w", err)
	}
	if ack.Duplicate {
		slog.Debug("NATS dropped duplicate message", "subject", subject, "msgId", deduplicationID)
	}
	return nil
}

// JetStream exposes the JetStream context
func (p *Publisher) JetStream() jetstream.JetStream {
	return p.js
}

// Close drains and closes the connection
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
