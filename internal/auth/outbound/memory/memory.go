// Package memory keeps OTPs and rate-limit timestamps in process memory.
// It suits a single instance; run the redis adapter when scaling out.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/smsauth/internal/auth/entity"
	"github.com/shandysiswandi/smsauth/internal/pkg/clock"
	"github.com/shandysiswandi/smsauth/internal/pkg/goerror"
)

// sweepEvery is how many writes pass between scans for stale entries.
const sweepEvery = 256

type OTPStore struct {
	mu      sync.Mutex
	clock   clock.Clocker
	records map[string]entity.OTP
	writes  int
}

func NewOTPStore(clk clock.Clocker) *OTPStore {
	return &OTPStore{clock: clk, records: make(map[string]entity.OTP)}
}

func (s *OTPStore) Issue(_ context.Context, rec entity.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.PhoneKey] = rec

	s.writes++
	if s.writes%sweepEvery == 0 {
		now := s.clock.Now()
		for k, r := range s.records {
			if r.Expired(now) {
				delete(s.records, k)
			}
		}
	}

	return nil
}

func (s *OTPStore) Peek(_ context.Context, phoneKey string) (*entity.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(phoneKey)
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &rec, nil
}

func (s *OTPStore) Consume(_ context.Context, phoneKey, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.live(phoneKey)
	if !ok {
		return goerror.ErrNotFound
	}
	if rec.Code != code {
		return entity.ErrOTPMismatch
	}

	delete(s.records, phoneKey)
	return nil
}

func (s *OTPStore) Invalidate(_ context.Context, phoneKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, phoneKey)
	return nil
}

// live must be called with mu held. Expired records are dropped on sight.
func (s *OTPStore) live(phoneKey string) (entity.OTP, bool) {
	rec, ok := s.records[phoneKey]
	if !ok {
		return entity.OTP{}, false
	}
	if rec.Expired(s.clock.Now()) {
		delete(s.records, phoneKey)
		return entity.OTP{}, false
	}

	return rec, true
}

// RateLimiter allows one acquisition per phone key per window.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	writes int
}

func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{window: window, last: make(map[string]time.Time)}
}

// TryAcquire never moves the stored timestamp on refusal, so hammering the
// endpoint does not extend the wait.
func (l *RateLimiter) TryAcquire(_ context.Context, phoneKey string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if at, ok := l.last[phoneKey]; ok && now.Sub(at) < l.window {
		return false, nil
	}

	l.last[phoneKey] = now

	l.writes++
	if l.writes%sweepEvery == 0 {
		for k, at := range l.last {
			if now.Sub(at) >= l.window {
				delete(l.last, k)
			}
		}
	}

	return true, nil
}
