package jobs

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/task"

	"github.com/robfig/cron/v3"
)

const DefaultSweepSchedule = "@every 1m"

// DispatchSweepJob queues a dispatch cycle on a schedule, so orders whose change
// notification was missed are still picked up.
type DispatchSweepJob struct {
	queue    TaskEnqueuer
	input    task.Input
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewDispatchSweepJob creates the job. An empty schedule disables it; both five
// and six field expressions and descriptors such as "@every 1m" are accepted.
func NewDispatchSweepJob(queue TaskEnqueuer, input task.Input, schedule string, logger *slog.Logger) *DispatchSweepJob {
	input.TriggeredBy = "sweep"
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	return &DispatchSweepJob{
		queue:    queue,
		input:    input,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
		logger:   logger.With("component", "dispatch_sweep_job"),
	}
}

// Start registers the sweep and starts the scheduler.
func (j *DispatchSweepJob) Start() error {
	if j.schedule == "" {
		j.logger.InfoContext(context.Background(), "Dispatch sweep disabled")
		return nil
	}

	_, err := j.cron.AddFunc(j.schedule, j.Run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch sweep started", "schedule", j.schedule)
	return nil
}

// Run queues one sweep cycle. A full queue is expected under load and only logged at debug.
func (j *DispatchSweepJob) Run() {
	ctx := context.Background()
	if _, err := j.queue.Enqueue(ctx, j.input); err != nil {
		if errors.Is(err, ErrQueueFull) {
			j.logger.DebugContext(ctx, "Dispatch sweep skipped, queue full")
			return
		}
		j.logger.ErrorContext(ctx, "Dispatch sweep failed", "error", err)
	}
}

// Stop stops the scheduler and waits for a running sweep.
func (j *DispatchSweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Dispatch sweep stopped")
}
