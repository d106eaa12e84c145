package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var _ TaskRunnerInterface = (*Pool)(nil)

// Pool executes batches of tasks on a bounded number of goroutines.
type Pool struct {
	workerCount int // zero runs every task of a batch at once
}

func NewPool(workerCount int) *Pool {
	if workerCount < 0 {
		workerCount = 0
	}
	return &Pool{workerCount: workerCount}
}

// RunAll executes every task and waits for all of them. errs[i] is the
// outcome of batch[i].
func (p *Pool) RunAll(ctx context.Context, batch []TaskInterface) []error {
	errs := make([]error, len(batch))
	if len(batch) == 0 {
		return errs
	}

	workerCount := p.workerCount
	if workerCount == 0 || workerCount > len(batch) {
		workerCount = len(batch)
	}

	taskQueue := make(chan int, len(batch))
	for i := range batch {
		taskQueue <- i
	}
	close(taskQueue)

	var wg sync.WaitGroup
	for id := 0; id < workerCount; id++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range taskQueue {
				errs[i] = p.executeTask(ctx, workerID, batch[i])
			}
		}(id)
	}
	wg.Wait()

	return errs
}

func (p *Pool) executeTask(ctx context.Context, workerID int, task TaskInterface) (err error) {
	task.Start()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
		if err != nil {
			slog.Debug("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "feed", task.GetFeedName(), "duration", task.GetDuration(), "error", err)
		}
	}()

	return task.Execute(ctx)
}
