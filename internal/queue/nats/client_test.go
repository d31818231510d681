package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/queue"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/queue/nats/natstest"
)

func TestPublisher_CreatesStreamAndPublishes(t *testing.T) {
	srv := natstest.Start(t)
	ctx := context.Background()

	p, err := Connect(ctx, queue.NATSConfig{URL: srv.URL(), Subjects: []string{"wms.monitor.>"}})
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Publish(ctx, "wms.monitor.run", []byte(`{"runId":"1"}`)))

	stream, err := p.JetStream().Stream(ctx, DefaultStreamName)
	require.NoError(t, err)

	msg, err := stream.GetLastMsgForSubject(ctx, "wms.monitor.run")
	require.NoError(t, err)
	assert.JSONEq(t, `{"runId":"1"}`, string(msg.Data))
}

func TestPublisher_Deduplication(t *testing.T) {
	srv := natstest.Start(t)
	ctx := context.Background()

	p, err := Connect(ctx, queue.NATSConfig{URL: srv.URL(), StreamName: "RUNS", Subjects: []string{"runs"}})
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.PublishWithDeduplication(ctx, "runs", []byte("a"), "run-1"))
	require.NoError(t, p.PublishWithDeduplication(ctx, "runs", []byte("a"), "run-1"))
	require.NoError(t, p.PublishWithDeduplication(ctx, "runs", []byte("b"), "run-2"))

	stream, err := p.JetStream().Stream(ctx, "RUNS")
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.State.Msgs)
}

func TestPublisher_ExistingStreamKept(t *testing.T) {
	srv := natstest.Start(t)
	ctx := context.Background()

	first, err := Connect(ctx, queue.NATSConfig{URL: srv.URL(), StreamName: "RUNS", Subjects: []string{"runs"}})
	require.NoError(t, err)
	require.NoError(t, first.Publish(ctx, "runs", []byte("a")))
	first.Close()

	second, err := Connect(ctx, queue.NATSConfig{URL: srv.URL(), StreamName: "RUNS", Subjects: []string{"other"}})
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, second.Publish(ctx, "runs", []byte("b")))
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), queue.NATSConfig{URL: "nats://127.0.0.1:1"})
	assert.Error(t, err)
}
