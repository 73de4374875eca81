package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestPool(count, queueSize int) *Pool {
	return New(count, queueSize, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPool_RunsSubmittedTasks(t *testing.T) {
	pool := newTestPool(2, 16)
	pool.Start(context.Background())

	var done atomic.Int32
	for i := 0; i < 10; i++ {
		ok := pool.Submit("count", func(context.Context) {
			done.Add(1)
		})
		if !ok {
			t.Fatal("Submit returned false with free queue capacity")
		}
	}

	pool.Stop()

	if got := done.Load(); got != 10 {
		t.Errorf("ran %d tasks, want 10", got)
	}
}

func TestPool_SubmitFullQueue(t *testing.T) {
	pool := newTestPool(1, 1)
	// Workers not started: the queue fills and stays full.

	if !pool.Submit("first", func(context.Context) {}) {
		t.Fatal("first Submit should fit the queue")
	}
	if pool.Submit("second", func(context.Context) {}) {
		t.Error("Submit should report false on a full queue")
	}
}

func TestPool_StopDrainsQueue(t *testing.T) {
	pool := newTestPool(1, 16)

	var done atomic.Int32
	var release sync.WaitGroup
	release.Add(1)

	pool.Submit("blocker", func(context.Context) {
		release.Wait()
		done.Add(1)
	})
	for i := 0; i < 5; i++ {
		pool.Submit("queued", func(context.Context) {
			done.Add(1)
		})
	}

	pool.Start(context.Background())
	release.Done()
	pool.Stop()

	if got := done.Load(); got != 6 {
		t.Errorf("ran %d tasks, want all 6 drained before Stop returns", got)
	}
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := newTestPool(1, 4)
	pool.Start(context.Background())
	pool.Stop()

	if pool.Submit("late", func(context.Context) {}) {
		t.Error("Submit should report false after Stop")
	}
}

func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	pool := newTestPool(1, 4)
	pool.Start(context.Background())

	var done atomic.Int32
	pool.Submit("bad", func(context.Context) {
		panic("boom")
	})
	pool.Submit("good", func(context.Context) {
		done.Add(1)
	})

	pool.Stop()

	if got := done.Load(); got != 1 {
		t.Errorf("task after panic did not run")
	}
}

func TestPool_TaskSeesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pool := newTestPool(1, 4)
	pool.Start(ctx)

	got := make(chan context.Context, 1)
	pool.Submit("capture", func(taskCtx context.Context) {
		got <- taskCtx
	})

	select {
	case taskCtx := <-got:
		cancel()
		select {
		case <-taskCtx.Done():
		case <-time.After(time.Second):
			t.Error("task context not tied to pool context")
		}
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}

	pool.Stop()
}
