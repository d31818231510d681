package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSQSClient records SendMessage inputs
type mockSQSClient struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func TestPublisher_StandardQueue(t *testing.T) {
	client := &mockSQSClient{}
	p := NewPublisherWithClient(client, "https://sqs.us-east-1.amazonaws.com/123/wms-runs")

	require.NoError(t, p.Publish(context.Background(), "wms.monitor.run", []byte(`{"a":1}`)))
	require.NoError(t, p.PublishWithDeduplication(context.Background(), "wms.monitor.run", []byte(`{}`), "run-1"))

	require.Len(t, client.inputs, 2)

	first := client.inputs[0]
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/wms-runs", aws.ToString(first.QueueUrl))
	assert.Equal(t, `{"a":1}`, aws.ToString(first.MessageBody))
	assert.Equal(t, "wms.monitor.run", aws.ToString(first.MessageAttributes["Subject"].StringValue))
	assert.Nil(t, first.MessageGroupId)

	second := client.inputs[1]
	assert.Nil(t, second.MessageDeduplicationId)
	assert.Equal(t, "run-1", aws.ToString(second.MessageAttributes["DeduplicationId"].StringValue))
}

func TestPublisher_FIFOQueue(t *testing.T) {
	client := &mockSQSClient{}
	p := NewPublisherWithClient(client, "https://sqs.us-east-1.amazonaws.com/123/wms-runs.fifo")

	require.NoError(t, p.PublishWithDeduplication(context.Background(), "wms.monitor.run", []byte(`{}`), "run-1"))

	input := client.inputs[0]
	assert.Equal(t, "wms.monitor.run", aws.ToString(input.MessageGroupId))
	assert.Equal(t, "run-1", aws.ToString(input.MessageDeduplicationId))
}

func TestPublisher_SendError(t *testing.T) {
	client := &mockSQSClient{err: errors.New("AccessDenied")}
	p := NewPublisherWithClient(client, "https://sqs.us-east-1.amazonaws.com/123/wms-runs")

	err := p.Publish(context.Background(), "s", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
	assert.NoError(t, p.Close())
}
