package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler hands a fresh batch of tasks to its runner on every tick.
type Scheduler struct {
	runner   TaskRunnerInterface
	interval time.Duration
	newBatch func() []TaskInterface
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(runner TaskRunnerInterface, interval time.Duration, newBatch func() []TaskInterface) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:   runner,
		interval: interval,
		newBatch: newBatch,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.runBatch()
			}
		}
	}()
}

// Stop waits for the batch in flight, if any.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) runBatch() {
	batch := s.newBatch()
	if len(batch) == 0 {
		return
	}

	for i, err := range s.runner.RunAll(s.ctx, batch) {
		if err != nil {
			slog.Error("Scheduled task failed", "type", string(batch[i].GetType()), "id", batch[i].GetID(), "error", err)
		}
	}
}
