package schedule

import (
	"context"
	"time"
)

// Task is a cancellable repeating job: it runs once immediately, then on a
// fixed interval until stopped.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Every starts a task running job now and then every interval. The job
// receives a context that is cancelled when the task stops.
func Every(ctx context.Context, interval time.Duration, job func(context.Context)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	task := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(task.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		job(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job(ctx)
			}
		}
	}()

	return task
}

// Stop cancels the task and waits for the current run to return. Safe to
// call more than once.
func (t *Task) Stop() {
	t.cancel()
	<-t.done
}
