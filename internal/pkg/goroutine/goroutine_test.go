package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestManager_CollectsErrorsAndPanics(t *testing.T) {
	// Arrange
	m := NewManager(4)
	boom := errors.New("boom")
	var ran atomic.Int32

	// Act
	m.Go(context.Background(), "ok", func(context.Context) error { ran.Add(1); return nil })
	m.Go(context.Background(), "fails", func(context.Context) error { ran.Add(1); return boom })
	m.Go(context.Background(), "panics", func(context.Context) error { ran.Add(1); panic("bad") })
	err := m.Wait()

	// Assert
	if ran.Load() != 3 {
		t.Fatalf("ran = %d, want 3", ran.Load())
	}
	if !errors.Is(err, boom) || !errors.Is(err, ErrPanic) {
		t.Fatalf("Wait() error = %v, want boom and panic", err)
	}
}

func TestManager_RejectsAfterWaitAndWhenFull(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	if !m.Go(context.Background(), "blocker", func(context.Context) error {
		close(started)
		<-release
		return nil
	}) {
		t.Fatalf("first task should start")
	}
	<-started

	if m.Go(context.Background(), "overflow", func(context.Context) error { return nil }) {
		t.Fatalf("task beyond the limit should be rejected")
	}

	close(release)
	if err := m.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if m.Go(context.Background(), "late", func(context.Context) error { return nil }) {
		t.Fatalf("task after Wait should be rejected")
	}
}

func TestManager_CanceledContextSkipsTask(t *testing.T) {
	m := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	m.Go(ctx, "canceled", func(context.Context) error { ran.Store(true); return nil })

	if err := m.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if ran.Load() {
		t.Fatalf("task should not run on a canceled context")
	}
}
