package scheduler

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsJob(t *testing.T) {
	s := New(log.New(io.Discard, "", 0))
	var calls int32
	done := make(chan struct{}, 1)
	err := s.Add("tick", "@every 1s", time.Second, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("expected job context with deadline")
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			done <- struct{}{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("job did not run")
	}
	cancel()
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatalf("scheduler did not stop")
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := New(log.New(io.Discard, "", 0))
	if err := s.Add("bad", "not a cron spec", 0, func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}
