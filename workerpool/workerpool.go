// Package workerpool runs decoding and encoding tasks on a bounded goroutine pool.
package workerpool

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/atomic"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
)

var (
	// ErrStopped is returned if a task is submitted to a pool that was shut down.
	ErrStopped = ierrors.New("worker pool is stopped")
	// ErrTaskPanicked is returned if a task panicked.
	ErrTaskPanicked = ierrors.New("task panicked")
)

// WorkerPool is a blocking goroutine pool with a fixed number of workers. Submit waits until a worker is available.
type WorkerPool struct {
	pool         *ants.Pool
	stopped      atomic.Bool
	tasksWg      sync.WaitGroup
	initOnce     sync.Once
	shutdownOnce sync.Once

	optsWorkerCount int
	optsLogger      log.Logger
}

// New creates a WorkerPool. The underlying goroutines are only started when the first task is submitted.
func New(opts ...options.Option[WorkerPool]) *WorkerPool {
	return options.Apply(&WorkerPool{
		optsWorkerCount: runtime.GOMAXPROCS(0),
		optsLogger:      log.EmptyLogger,
	}, opts)
}

// Submit schedules a task. A panicking task is recovered and logged.
func (w *WorkerPool) Submit(task func()) error {
	if w.stopped.Load() {
		return ErrStopped
	}

	w.tasksWg.Add(1)

	if err := w.get().Submit(func() {
		defer w.tasksWg.Done()
		defer func() {
			if r := recover(); r != nil {
				w.optsLogger.LogWarn("recovered from panic in worker pool", "panic", r, "stack", string(debug.Stack()))
			}
		}()

		task()
	}); err != nil {
		w.tasksWg.Done()

		return ierrors.Wrap(err, "failed to submit task")
	}

	return nil
}

// WorkerCount returns the number of workers of the pool.
func (w *WorkerPool) WorkerCount() int {
	if w.stopped.Load() {
		return 0
	}

	return w.get().Cap()
}

// RunningWorkers returns the number of workers that currently execute a task.
func (w *WorkerPool) RunningWorkers() int {
	if w.stopped.Load() {
		return 0
	}

	return w.get().Running()
}

// Shutdown stops the pool without waiting for the scheduled tasks.
func (w *WorkerPool) Shutdown() {
	w.shutdownOnce.Do(func() {
		w.stopped.Store(true)

		if w.pool != nil {
			go w.pool.Release()
		}
	})
}

// ShutdownGracefully stops the pool and waits for the scheduled tasks to finish.
func (w *WorkerPool) ShutdownGracefully() {
	w.shutdownOnce.Do(func() {
		w.stopped.Store(true)
		w.tasksWg.Wait()

		if w.pool != nil {
			w.pool.Release()
		}
	})
}

func (w *WorkerPool) get() *ants.Pool {
	w.initOnce.Do(func() {
		pool, err := ants.NewPool(w.optsWorkerCount, ants.WithNonblocking(false))
		if err != nil {
			panic(err)
		}

		w.pool = pool
	})

	return w.pool
}

// Map applies fn to every input on the pool and returns the results in input order. The error of an input is stored
// at the same index as its result. Inputs that were not started before ctx was done fail with the context error.
func Map[In, Out any](ctx context.Context, w *WorkerPool, inputs []In, fn func(context.Context, In) (Out, error)) ([]Out, []error) {
	results := make([]Out, len(inputs))
	errs := make([]error, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			errs[i] = err

			continue
		}

		wg.Add(1)
		if err := w.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = ierrors.Wrapf(ErrTaskPanicked, "input %d: %s", i, fmt.Sprint(r))
				}
			}()

			results[i], errs[i] = fn(ctx, input)
		}); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	return results, errs
}

// WithWorkerCount sets the number of workers (default: GOMAXPROCS).
func WithWorkerCount(workerCount int) options.Option[WorkerPool] {
	return func(w *WorkerPool) {
		w.optsWorkerCount = workerCount
	}
}

// WithLogger sets the logger that reports recovered panics.
func WithLogger(logger log.Logger) options.Option[WorkerPool] {
	return func(w *WorkerPool) {
		w.optsLogger = logger
	}
}
