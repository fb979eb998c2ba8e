package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunLock_TryAcquireRelease(t *testing.T) {
	lock := NewRunLock()

	if got := lock.Status(); got.Held {
		t.Errorf("initial Status().Held = true, want false")
	}

	if !lock.TryAcquire("job-1") {
		t.Fatal("first TryAcquire = false, want true")
	}
	if got := lock.Holder(); got != "job-1" {
		t.Errorf("Holder() = %q, want job-1", got)
	}
	if lock.TryAcquire("job-2") {
		t.Error("second TryAcquire = true, want false")
	}
	if got := lock.Holder(); got != "job-1" {
		t.Errorf("Holder() after contention = %q, want job-1", got)
	}

	st := lock.Status()
	if !st.Held || st.Holder != "job-1" || st.Since == nil {
		t.Errorf("Status() = %+v, want held by job-1 with a start time", st)
	}

	lock.Release()

	if got := lock.Holder(); got != "" {
		t.Errorf("Holder() after Release = %q, want empty", got)
	}
	if !lock.TryAcquire("job-2") {
		t.Error("TryAcquire after Release = false, want true")
	}
	lock.Release()
}

func TestRunLock_SingleWinnerUnderContention(t *testing.T) {
	lock := NewRunLock()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if lock.TryAcquire("job") {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Errorf("winners = %d, want 1", got)
	}
}

func TestRunLock_WaitForRelease(t *testing.T) {
	lock := NewRunLock()

	if err := lock.WaitForRelease(context.Background()); err != nil {
		t.Fatalf("WaitForRelease on free lock: %v", err)
	}

	lock.TryAcquire("job-1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := lock.WaitForRelease(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForRelease while held = %v, want deadline exceeded", err)
	}

	done := make(chan error, 1)
	go func() { done <- lock.WaitForRelease(context.Background()) }()

	lock.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForRelease after Release = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForRelease did not return after Release")
	}

	if !lock.TryAcquire("job-2") {
		t.Error("lock not reusable after WaitForRelease")
	}
}
