package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// JobManager coordinates the background work of the dispatcher: the worker pool,
// the change feed listener and the sweep job.
type JobManager struct {
	queue    *DispatchQueue
	listener *EventListener
	sweep    *DispatchSweepJob
	logger   *slog.Logger

	stopListener context.CancelFunc
	listenerDone chan struct{}
}

// NewJobManager wires the jobs. listener may be nil when the change feed is disabled.
func NewJobManager(queue *DispatchQueue, listener *EventListener, sweep *DispatchSweepJob, logger *slog.Logger) *JobManager {
	return &JobManager{
		queue:    queue,
		listener: listener,
		sweep:    sweep,
		logger:   logger.With("component", "job_manager"),
	}
}

// StartAll starts the workers first so nothing is queued without a consumer.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll(ctx context.Context) error {
	jm.queue.Start(ctx)

	if err := jm.sweep.Start(); err != nil {
		// Stop already started jobs if this one fails
		_ = jm.queue.Stop(ctx)
		return fmt.Errorf("failed to start dispatch sweep job: %w", err)
	}

	if jm.listener != nil {
		var listenerCtx context.Context
		listenerCtx, jm.stopListener = context.WithCancel(ctx)
		jm.listenerDone = make(chan struct{})
		go func() {
			defer close(jm.listenerDone)
			jm.listener.Run(listenerCtx)
		}()
	}

	return nil
}

// StopAll stops the producers, then lets the workers finish queued tasks until ctx ends.
func (jm *JobManager) StopAll(ctx context.Context) error {
	jm.sweep.Stop()

	if jm.stopListener != nil {
		jm.stopListener()
		select {
		case <-jm.listenerDone:
		case <-ctx.Done():
		}
	}

	if err := jm.queue.Stop(ctx); err != nil {
		jm.logger.WarnContext(ctx, "Dispatch queue did not drain", "error", err)
		return err
	}
	return nil
}
