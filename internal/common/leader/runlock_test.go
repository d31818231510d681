package leader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestDial(t *testing.T) {
	client, err := Dial("redis://localhost:6379/2")
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, 2, client.Options().DB)

	_, err = Dial("http://localhost:6379")
	assert.Error(t, err)
}

func TestNewRunLock_Defaults(t *testing.T) {
	l := NewRunLock(unreachableClient(), RunLockConfig{LockName: "wms-monitor:run"})
	defer l.Close()

	assert.Equal(t, 15*time.Minute, l.config.TTL)
	assert.NotEmpty(t, l.config.Owner)

	other := NewRunLock(unreachableClient(), RunLockConfig{LockName: "wms-monitor:run"})
	defer other.Close()
	assert.NotEqual(t, l.config.Owner, other.config.Owner)
}

func TestRunLock_UnreachableIsNotLockHeld(t *testing.T) {
	l := NewRunLock(unreachableClient(), RunLockConfig{LockName: "wms-monitor:run", Owner: "test"})
	defer l.Close()

	err := l.Acquire(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLockHeld))

	assert.Error(t, l.Release(context.Background()))
}
