package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

// warmupCronSpec re-warms the current year's report every night at 02:00 UTC.
const warmupCronSpec = "0 2 * * *"

// Worker runs the background queue: the report warmup handler plus the
// nightly schedule that keeps the current year's report cache warm.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

// NewWorker builds the Asynq server, handler mux, and nightly scheduler.
func NewWorker(redisOpts asynq.RedisClientOpt, warmup *ReportWarmupJob) (*Worker, error) {
	if warmup == nil {
		return nil, errors.New("jobs: warmup job is required")
	}
	srv := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskReportWarmup, warmup.Handle)

	// Year 0 in the payload resolves to the current year when the task runs,
	// so the registered task stays valid across year boundaries.
	nightly, err := NewReportWarmupTask(0)
	if err != nil {
		return nil, err
	}
	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := scheduler.Register(warmupCronSpec, nightly, asynq.MaxRetry(3)); err != nil {
		return nil, err
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler}, nil
}

// Run processes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	if err := w.scheduler.Start(); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.scheduler.Shutdown()
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.scheduler.Shutdown()
		return err
	}
}
