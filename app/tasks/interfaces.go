package tasks

import "context"

// TaskRunnerInterface runs a batch of tasks to completion.
// Every task reports its own outcome; a failing task never stops its siblings.
// Example usage:
//
//	pool := NewPool(4)
//	errs := pool.RunAll(ctx, []TaskInterface{taskA, taskB})
//	for i, err := range errs { ... }
type TaskRunnerInterface interface {
	RunAll(ctx context.Context, batch []TaskInterface) []error
}

// TaskSchedulerInterface runs tasks in the background on a fixed interval.
// Example usage:
//
//	scheduler := NewScheduler(NewPool(1), time.Minute, func() []TaskInterface {
//		return []TaskInterface{NewReloadTopicsTask(configCache)}
//	})
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
}
