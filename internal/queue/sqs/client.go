// Package sqs provides the AWS SQS publisher
package sqs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/queue"
)

// SendMessageAPI is the part of the SQS client the publisher uses
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher publishes messages to SQS
type Publisher struct {
	client   SendMessageAPI
	queueURL string
	fifo     bool
}

var _ queue.Publisher = (*Publisher)(nil)

// NewPublisher loads the default AWS credential chain and returns a publisher
// for cfg.QueueURL
func NewPublisher(ctx context.Context, cfg queue.SQSConfig) (*Publisher, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	slog.Debug("SQS publisher configured", "queueUrl", cfg.QueueURL, "region", cfg.Region)
	return NewPublisherWithClient(client, cfg.QueueURL), nil
}

// NewPublisherWithClient wraps an existing client
func NewPublisherWithClient(client SendMessageAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
	}
}

// Publish sends a message to the queue
func (p *Publisher) Publish(ctx context.Context, subject string, data []byte) error {
	input := p.input(subject, data)
	if p.fifo {
		input.MessageGroupId = aws.String(subject)
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send SQS message: %w", err)
	}
	return nil
}

// PublishWithDeduplication sends a message with a deduplication id. Standard
// queues have no deduplication, so the id only travels as an attribute there.
func (p *Publisher) PublishWithDeduplication(ctx context.Context, subject string, data []byte, deduplicationID string) error {
	input := p.input(subject, data)
	input.MessageAttributes["DeduplicationId"] = types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(deduplicationID),
	}
	if p.fifo {
		input.MessageGroupId = aws.String(subject)
		input.MessageDeduplicationId = aws.String(deduplicationID)
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send SQS message with deduplication: %w", err)
	}
	return nil
}

func (p *Publisher) input(subject string, data []byte) *sqs.SendMessageInput {
	return &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(data)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"Subject": {
				DataType:    aws.String("String"),
				StringValue: aws.String(subject),
			},
		},
	}
}

// Close is a no-op; the SDK client holds no connections that need closing
func (p *Publisher) Close() error {
	return nil
}
