// Package leader provides the Redis lock that keeps scheduled runs from overlapping
package leader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned by Acquire when another run owns the lock
var ErrLockHeld = errors.New("run lock held by another instance")

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RunLockConfig holds configuration for the run lock
type RunLockConfig struct {
	// LockName is the Redis key (e.g., "wms-monitor:run")
	LockName string

	// TTL bounds how long a crashed run can block the next one
	TTL time.Duration

	// Owner identifies this process in the lock value (defaults to hostname/uuid)
	Owner string
}

// RunLock is a single-shot SET NX PX lock with owner-checked release
type RunLock struct {
	client *redis.Client
	config RunLockConfig
}

// Dial parses a redis:// URL and returns a client
func Dial(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRunLock creates a run lock on client
func NewRunLock(client *redis.Client, cfg RunLockConfig) *RunLock {
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.Owner == "" {
		host, _ := os.Hostname()
		cfg.Owner = host + "/" + uuid.NewString()
	}
	return &RunLock{client: client, config: cfg}
}

// Acquire takes the lock or returns ErrLockHeld if another owner has it.
// Any other error means Redis could not be asked.
func (l *RunLock) Acquire(ctx context.Context) error {
	ok, err := l.client.SetNX(ctx, l.config.LockName, l.config.Owner, l.config.TTL).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock %s: %w", l.config.LockName, err)
	}

	if !ok {
		owner, err := l.client.Get(ctx, l.config.LockName).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			slog.Warn("Failed to read run lock owner", "error", err, "lockName", l.config.LockName)
		}
		return fmt.Errorf("%w: %s", ErrLockHeld, owner)
	}

	slog.Info("Acquired run lock",
		"lockName", l.config.LockName,
		"owner", l.config.Owner,
		"ttl", l.config.TTL)
	return nil
}

// Release deletes the lock if this process still owns it
func (l *RunLock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.config.LockName}, l.config.Owner).Int()
	if err != nil {
		return fmt.Errorf("failed to release run lock %s: %w", l.config.LockName, err)
	}

	if n == 0 {
		slog.Warn("Run lock expired before release", "lockName", l.config.LockName)
		return nil
	}

	slog.Info("Released run lock", "lockName", l.config.LockName)
	return nil
}

// Close closes the underlying client
func (l *RunLock) Close() error {
	return l.client.Close()
}
