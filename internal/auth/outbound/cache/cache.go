// Package cache is the Redis backed OTP store and rate limiter. Several
// service instances can share it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	prefixOTP       = "auth:otp:"
	prefixRateLimit = "auth:ratelimit:"
)

// consumeScript deletes KEYS[1] only when its code equals ARGV[1].
// Returns 1 on delete, 0 when missing, -1 on mismatch.
var consumeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return 0
end
local rec = cjson.decode(raw)
if rec['code'] ~= ARGV[1] then
  return -1
end
redis.call('DEL', KEYS[1])
return 1
`)

type Cache struct {
	client redis.UniversalClient
	clock  clock.Clocker
	ins    instrument.Instrumentation
	window time.Duration
}

// New returns a store whose rate limiter allows one send per window.
func New(client redis.UniversalClient, clk clock.Clocker, ins instrument.Instrumentation, window time.Duration) *Cache {
	return &Cache{client: client, clock: clk, ins: ins, window: window}
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("auth.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, entity.ErrOTPMismatch) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Cache) Issue(ctx context.Context, rec entity.OTP) (err error) {
	ctx, span := c.startSpan(ctx, "Issue")
	defer func() { c.endSpan(span, err) }()

	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if !rec.ExpiresAt.IsZero() {
		ttl = rec.ExpiresAt.Sub(c.clock.Now())
		if ttl <= 0 {
			// Already expired: the overwrite still has to drop the previous code.
			return c.client.Del(ctx, prefixOTP+rec.PhoneKey).Err()
		}
	}

	return c.client.Set(ctx, prefixOTP+rec.PhoneKey, raw, ttl).Err()
}

func (c *Cache) Peek(ctx context.Context, phoneKey string) (_ *entity.OTP, err error) {
	ctx, span := c.startSpan(ctx, "Peek")
	defer func() { c.endSpan(span, err) }()

	raw, err := c.client.Get(ctx, prefixOTP+phoneKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec entity.OTP
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	rec.PhoneKey = phoneKey

	// Redis expiry has millisecond precision; the record is authoritative.
	if rec.Expired(c.clock.Now()) {
		return nil, goerror.ErrNotFound
	}

	return &rec, nil
}

func (c *Cache) Consume(ctx context.Context, phoneKey, code string) (err error) {
	ctx, span := c.startSpan(ctx, "Consume")
	defer func() { c.endSpan(span, err) }()

	res, err := consumeScript.Run(ctx, c.client, []string{prefixOTP + phoneKey}, code).Int()
	if err != nil {
		return err
	}

	switch res {
	case 1:
		return nil
	case -1:
		return entity.ErrOTPMismatch
	default:
		return goerror.ErrNotFound
	}
}

func (c *Cache) Invalidate(ctx context.Context, phoneKey string) (err error) {
	ctx, span := c.startSpan(ctx, "Invalidate")
	defer func() { c.endSpan(span, err) }()

	return c.client.Del(ctx, prefixOTP+phoneKey).Err()
}

// TryAcquire stores now with SET NX PX window. A refusal leaves the existing
// key and its expiry alone.
func (c *Cache) TryAcquire(ctx context.Context, phoneKey string, now time.Time) (_ bool, err error) {
	ctx, span := c.startSpan(ctx, "TryAcquire")
	defer func() { c.endSpan(span, err) }()

	ok, err := c.client.SetNX(ctx, prefixRateLimit+phoneKey, strconv.FormatInt(now.UnixMilli(), 10), c.window).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
