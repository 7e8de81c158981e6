// Package idempotency makes write endpoints safe to retry: the first request
// with a given key runs, later ones replay the stored result.
package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInProgress is returned while another request with the same key is running.
	ErrInProgress = errors.New("operation already in progress")
	// ErrInvalidState is returned when the stored value is not one this package wrote.
	ErrInvalidState = errors.New("invalid idempotency state")
)

const (
	stateInProgress = "in_progress"
	donePrefix      = "done:"

	defaultLockDuration = time.Minute
	defaultResultTTL    = 24 * time.Hour
)

// Idempotency executes fn at most once per key within the result TTL.
type Idempotency interface {
	// Exec runs fn on the first call for key and stores its payload. Later
	// calls return the stored payload with replayed=true. A failed fn releases
	// the key so the client may retry.
	Exec(ctx context.Context, key string, fn func(context.Context) ([]byte, error), opts ...Option) (payload []byte, replayed bool, err error)
}

// Option adjusts a single Exec call.
type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	resultTTL    time.Duration
}

// WithLockDuration bounds how long an in-flight call holds the key.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithResultTTL sets how long a completed result is replayed.
func WithResultTTL(d time.Duration) Option {
	return func(o *execOptions) { o.resultTTL = d }
}

// Tracker is the Redis-backed Idempotency.
type Tracker struct {
	client redis.UniversalClient
	prefix string
}

// New returns a Tracker storing keys under "idempotency:".
func New(client redis.UniversalClient) *Tracker {
	return &Tracker{client: client, prefix: "idempotency:"}
}

func (s *Tracker) Exec(ctx context.Context, key string, fn func(context.Context) ([]byte, error), opts ...Option) ([]byte, bool, error) {
	o := execOptions{lockDuration: defaultLockDuration, resultTTL: defaultResultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lockDuration <= 0 {
		o.lockDuration = defaultLockDuration
	}
	if o.resultTTL <= 0 {
		o.resultTTL = defaultResultTTL
	}

	fk := s.prefix + key

	acquired, err := s.client.SetNX(ctx, fk, stateInProgress, o.lockDuration).Result()
	if err != nil {
		return nil, false, err
	}

	if !acquired {
		stored, err := s.client.Get(ctx, fk).Result()
		switch {
		case errors.Is(err, redis.Nil):
			// Lock expired between SETNX and GET; treat as in flight and let the client retry.
			return nil, false, ErrInProgress
		case err != nil:
			return nil, false, err
		case stored == stateInProgress:
			return nil, false, ErrInProgress
		case strings.HasPrefix(stored, donePrefix):
			return []byte(strings.TrimPrefix(stored, donePrefix)), true, nil
		default:
			return nil, false, ErrInvalidState
		}
	}

	payload, err := fn(ctx)
	if err != nil {
		if delErr := s.client.Del(context.WithoutCancel(ctx), fk).Err(); delErr != nil {
			return nil, false, errors.Join(err, delErr)
		}
		return nil, false, err
	}

	if err := s.client.Set(ctx, fk, donePrefix+string(payload), o.resultTTL).Err(); err != nil {
		return nil, false, err
	}

	return payload, false, nil
}
