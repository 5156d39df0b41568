// Package jobs runs the background side of the dispatcher.
//
// # Components
//
// 1. DispatchQueue - stores every dispatch request as a task and runs it on a fixed worker pool
// 2. EventListener - follows the order change feed and queues a cycle per qualifying status change
// 3. DispatchSweepJob - queues a cycle on a cron schedule (github.com/robfig/cron/v3)
//
// # Usage
//
// Jobs are managed through JobManager:
//
//	jobManager := jobs.NewJobManager(queue, listener, sweep, logger)
//
//	if err := jobManager.StartAll(ctx); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll(shutdownCtx)
//
// # Task lifecycle
//
// PENDING when queued, STARTED when a worker picks it up, then SUCCESS with the
// cycle result or FAILURE with the error text. Soft outcomes such as "no idle
// couriers" are successful tasks. A request arriving while the buffer is full is
// stored directly as FAILURE with "queue full".
//
// # Change feed
//
// The listener moves Connecting → Subscribed → Disconnected and back to
// Connecting after a fixed delay, until its context ends. Only the qualifying
// statuses in order.QualifyingStatuses trigger a cycle.
package jobs
