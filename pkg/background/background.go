package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"checkout/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Task is a periodic job run by Worker.
type Task interface {
	// TTL is the pause between two runs. Non-positive values disable the periodic loop.
	TTL() time.Duration
	Do(context.Context) error
	Info() string
}

type workerLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

type Worker struct {
	log   workerLogger
	tasks []Task
	wg    sync.WaitGroup
}

// New runs every task once synchronously and then schedules them until ctx is cancelled.
// A failing or panicking first run aborts startup.
func New(ctx context.Context, log workerLogger, tasks []Task) (*Worker, error) {
	w := &Worker{
		log:   log,
		tasks: tasks,
	}
	if len(tasks) == 0 {
		return w, nil
	}

	warmUp, warmUpCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		warmUp.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("task %s panicked on warm-up: %v", task.Info(), r)
					log.Error("background task panic on warm-up",
						logger.NewField("task", task.Info()),
						logger.NewField("recover", r),
						logger.NewField("stack", string(debug.Stack())),
					)
				}
			}()
			log.Info("warming up background task", logger.NewField("task", task.Info()))
			return task.Do(warmUpCtx)
		})
	}
	if err := warmUp.Wait(); err != nil {
		return nil, fmt.Errorf("warm up background tasks: %w", err)
	}

	for _, task := range tasks {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.loop(ctx, task)
		}()
	}
	return w, nil
}

// Wait blocks until every periodic loop has observed cancellation.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) loop(ctx context.Context, task Task) {
	ttl := task.TTL()
	if ttl <= 0 {
		w.log.Warn("non-positive TTL, periodic run disabled",
			logger.NewField("task", task.Info()),
			logger.NewField("ttl", ttl.String()),
		)
		return
	}

	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("background task stopped", logger.NewField("task", task.Info()))
			return
		case <-ticker.C:
			w.runOnce(ctx, task)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("background task panic",
				logger.NewField("task", task.Info()),
				logger.NewField("recover", r),
				logger.NewField("stack", string(debug.Stack())),
			)
		}
	}()

	if err := task.Do(ctx); err != nil {
		w.log.Error("background task failed",
			logger.NewField("task", task.Info()),
			logger.NewField("error", err),
		)
	}
}
