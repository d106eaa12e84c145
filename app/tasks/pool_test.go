package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type stubTask struct {
	Task
	run func(ctx context.Context) error
}

func newStubTask(name string, run func(ctx context.Context) error) *stubTask {
	return &stubTask{Task: NewTask(TaskTypeFetchFeed, name), run: run}
}

func (t *stubTask) Execute(ctx context.Context) error {
	return t.run(ctx)
}

func TestPoolRunAllKeepsSubmissionOrder(t *testing.T) {
	errFailed := errors.New("failed")

	batch := []TaskInterface{
		newStubTask("slow", func(ctx context.Context) error {
			time.Sleep(30 * time.Millisecond)
			return nil
		}),
		newStubTask("failing", func(ctx context.Context) error { return errFailed }),
		newStubTask("fast", func(ctx context.Context) error { return nil }),
		newStubTask("panicking", func(ctx context.Context) error { panic("boom") }),
	}

	errs := NewPool(0).RunAll(context.Background(), batch)

	if len(errs) != len(batch) {
		t.Fatalf("Expected %d results, got %d", len(batch), len(errs))
	}
	if errs[0] != nil || errs[2] != nil {
		t.Errorf("Expected successful tasks to report nil, got %v and %v", errs[0], errs[2])
	}
	if !errors.Is(errs[1], errFailed) {
		t.Errorf("Expected task error at index 1, got %v", errs[1])
	}
	if errs[3] == nil {
		t.Error("Expected panic to be reported as an error")
	}
}

func TestPoolRespectsWorkerCount(t *testing.T) {
	var running, peak int32

	batch := make([]TaskInterface, 8)
	for i := range batch {
		batch[i] = newStubTask("task", func(ctx context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		})
	}

	NewPool(2).RunAll(context.Background(), batch)

	if peak > 2 {
		t.Errorf("Expected at most 2 concurrent tasks, got %d", peak)
	}
}

func TestPoolRunAllEmpty(t *testing.T) {
	if errs := NewPool(4).RunAll(context.Background(), nil); len(errs) != 0 {
		t.Errorf("Expected no results, got %v", errs)
	}
}

func TestTaskDuration(t *testing.T) {
	task := NewTask(TaskTypeFetchFeed, "feed")
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	task.Start()
	time.Sleep(time.Millisecond)
	if task.GetDuration() <= 0 {
		t.Error("Expected positive duration after start")
	}
	if task.GetFeedName() != "feed" || task.GetType() != TaskTypeFetchFeed || task.GetID() == "" {
		t.Errorf("Unexpected task fields %+v", task)
	}
}
