// Package queue provides the publish side of the message brokers that
// receive run-completed events.
package queue

import "context"

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish sends a message to the specified subject
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishWithDeduplication sends a message the broker drops if it has
	// already seen deduplicationID within its window
	PublishWithDeduplication(ctx context.Context, subject string, data []byte, deduplicationID string) error

	// Close closes the publisher
	Close() error
}

// NATSConfig holds NATS-specific configuration
type NATSConfig struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222")
	URL string

	// StreamName is the JetStream stream that captures Subjects
	StreamName string

	// Subjects are bound to the stream when it is created
	Subjects []string
}

// SQSConfig holds AWS SQS-specific configuration
type SQSConfig struct {
	// QueueURL is the SQS queue URL; a ".fifo" suffix enables group and dedup ids
	QueueURL string

	// Region is the AWS region
	Region string

	// Endpoint overrides the service endpoint (LocalStack, VPC endpoints)
	Endpoint string
}
