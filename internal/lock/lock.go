package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces lock keys so that operations on the same account
// number contend on the same key and nothing else does.
const keyPrefix = "account-lock:"

const retryDelay = 100 * time.Millisecond

var (
	// ErrResourceBusy means another caller held the account lock for the
	// whole wait budget. Callers may retry with backoff; the coordinator
	// never retries beyond the budget itself.
	ErrResourceBusy = errors.New("account is in use")

	// ErrUnavailable means the lock provider could not be reached or
	// answered with something other than a contention outcome. The lock
	// state is uncertain, so the caller must not proceed to mutate.
	ErrUnavailable = errors.New("lock provider unavailable")
)

// Coordinator gates every balance-affecting operation behind a distributed
// per-account lock. It is the only component that talks to the lock provider.
type Coordinator struct {
	rs    *redsync.Redsync
	wait  time.Duration
	lease time.Duration
}

func NewCoordinator(client *redis.Client, wait, lease time.Duration) *Coordinator {
	return &Coordinator{
		rs:    redsync.New(goredis.NewPool(client)),
		wait:  wait,
		lease: lease,
	}
}

// Lease is a held account lock, valid for the configured lease duration
// unless released earlier.
type Lease struct {
	mutex *redsync.Mutex
	key   string
}

// Acquire attempts to take the lock for accountNumber, retrying for up to
// the wait budget. Contention exhaustion maps to ErrResourceBusy; any other
// failure is logged and maps to ErrUnavailable. Both block the caller from
// entering the mutation path.
func (c *Coordinator) Acquire(ctx context.Context, accountNumber string) (*Lease, error) {
	key := keyPrefix + accountNumber

	tries := int(c.wait/retryDelay) + 1

	mutex := c.rs.NewMutex(key,
		redsync.WithExpiry(c.lease),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(retryDelay),
	)

	slog.Debug("trying lock", "key", key)

	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			slog.Debug("lock acquisition failed, account busy", "key", key)
			return nil, ErrResourceBusy
		}

		slog.Error("lock provider failure", "key", key, "error", err)

		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Lease{mutex: mutex, key: key}, nil
}

// Release gives the lock back. It is best-effort: an unheld or already
// expired lease is logged, never surfaced as a failure.
func (l *Lease) Release(ctx context.Context) {
	ok, err := l.mutex.UnlockContext(ctx)
	if err != nil {
		slog.Warn("failed to release lock", "key", l.key, "error", err)
		return
	}

	if !ok {
		slog.Warn("lock was not held or already expired", "key", l.key)
	}
}

// WithLock runs fn while holding the lock for accountNumber.
func (c *Coordinator) WithLock(ctx context.Context, accountNumber string, fn func(context.Context) error) error {
	lease, err := c.Acquire(ctx, accountNumber)
	if err != nil {
		return err
	}
	defer lease.Release(ctx)

	return fn(ctx)
}
