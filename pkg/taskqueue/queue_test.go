package taskqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_EnqueueNeverBlocks(t *testing.T) {
	p := New(1, 1, func(ctx context.Context, t Task) error { return nil })
	// 不启动 worker，第二个任务必须被直接丢弃
	if !p.Enqueue(Task{Kind: "a"}) {
		t.Fatalf("first enqueue should succeed")
	}

	done := make(chan bool, 1)
	go func() { done <- p.Enqueue(Task{Kind: "b"}) }()
	select {
	case ok := <-done:
		if ok {
			t.Fatalf("enqueue on full queue should report false")
		}
	case <-time.After(time.Second):
		t.Fatalf("enqueue blocked on full queue")
	}
}

func TestPool_RunsAllQueuedTasks(t *testing.T) {
	var n atomic.Int64
	p := New(64, 4, func(ctx context.Context, t Task) error {
		n.Add(1)
		return nil
	})
	p.Start(context.Background())
	for i := 0; i < 50; i++ {
		if !p.Enqueue(Task{Kind: "count"}) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	p.Close()

	if got := n.Load(); got != 50 {
		t.Fatalf("expected 50 tasks run, got %d", got)
	}
	if p.Enqueue(Task{Kind: "late"}) {
		t.Fatalf("enqueue after close should fail")
	}
}

// 单个任务出错或者 panic 不能拖垮 worker
func TestPool_SurvivesFailures(t *testing.T) {
	var ok atomic.Int64
	p := New(8, 1, func(ctx context.Context, t Task) error {
		switch t.Kind {
		case "panic":
			panic("boom")
		case "error":
			return errors.New("failed")
		}
		ok.Add(1)
		return nil
	})
	p.Start(context.Background())
	p.Enqueue(Task{Kind: "panic"})
	p.Enqueue(Task{Kind: "error"})
	p.Enqueue(Task{Kind: "ok"})
	p.Close()

	if ok.Load() != 1 {
		t.Fatalf("expected the healthy task to run, got %d", ok.Load())
	}
}
