package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers   = 2
	DefaultQueueSize = 32

	// statusWriteTimeout bounds the final task update, which must survive shutdown.
	statusWriteTimeout = 5 * time.Second
)

var (
	ErrQueueFull    = errors.New("queue full")
	ErrQueueStopped = errors.New("dispatch queue is stopped")
)

// Dispatcher runs one dispatch cycle; implemented by commands.DispatchRoutesCommandHandler.
type Dispatcher interface {
	Handle(ctx context.Context, command commands.DispatchRoutesCommand) (commands.DispatchRoutesResult, error)
}

// QueueOptions size the worker pool.
type QueueOptions struct {
	Workers int
	Size    int
	Now     func() time.Time
}

// DispatchQueue turns dispatch requests into tracked tasks executed by a fixed
// pool of workers. Enqueue never blocks: a full buffer fails the task at once.
type DispatchQueue struct {
	dispatcher Dispatcher
	tasks      ports.TaskRepository
	workers    int
	now        func() time.Time
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu      sync.RWMutex
	intake  chan *task.Task
	closed  bool
	started bool
	done    chan error
}

func NewDispatchQueue(
	dispatcher Dispatcher,
	tasks ports.TaskRepository,
	options QueueOptions,
	m *metrics.Metrics,
	logger *slog.Logger,
) *DispatchQueue {
	if options.Workers <= 0 {
		options.Workers = DefaultWorkers
	}
	if options.Size <= 0 {
		options.Size = DefaultQueueSize
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &DispatchQueue{
		dispatcher: dispatcher,
		tasks:      tasks,
		workers:    options.Workers,
		now:        options.Now,
		metrics:    m,
		logger:     logger.With("component", "dispatch_queue"),
		intake:     make(chan *task.Task, options.Size),
		done:       make(chan error, 1),
	}
}

// Start launches the workers. They run until Stop drains the intake or ctx ends.
func (q *DispatchQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true

	g, gctx := errgroup.WithContext(ctx)
	for i := range q.workers {
		worker := i + 1
		g.Go(func() error {
			q.work(gctx, worker)
			return nil
		})
	}
	go func() { q.done <- g.Wait() }()

	q.logger.InfoContext(ctx, "Dispatch workers started", "workers", q.workers, "queue_size", cap(q.intake))
}

// Enqueue stores a PENDING task and hands it to the workers. When the buffer is
// full the task is stored as FAILURE and ErrQueueFull is returned with its id.
// The store write happens outside the queue lock so Stop never waits on it.
func (q *DispatchQueue) Enqueue(ctx context.Context, input task.Input) (kernel.UUID, error) {
	if q.isClosed() {
		return kernel.UUID{}, ErrQueueStopped
	}

	t := task.NewTask(input, q.now())
	if err := q.tasks.Add(ctx, t); err != nil {
		return kernel.UUID{}, fmt.Errorf("store task: %w", err)
	}

	rejected := q.offer(t)
	if rejected == nil {
		q.metrics.SetQueueDepth(len(q.intake))
		q.logger.DebugContext(ctx, "Dispatch task queued", "task_id", t.ID().String(), "triggered_by", input.TriggeredBy)
		return t.ID(), nil
	}

	_ = t.Fail(rejected, q.now())
	q.finish(ctx, t)
	q.logger.WarnContext(ctx, "Dispatch task rejected",
		"task_id", t.ID().String(), "triggered_by", input.TriggeredBy, "reason", rejected.Error())
	return t.ID(), rejected
}

func (q *DispatchQueue) isClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// offer is a non-blocking send; it reports why t was not accepted.
func (q *DispatchQueue) offer(t *task.Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueStopped
	}
	select {
	case q.intake <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Status returns the stored state of a task.
func (q *DispatchQueue) Status(ctx context.Context, id kernel.UUID) (*task.Task, error) {
	return q.tasks.Get(ctx, id)
}

// Stop closes the intake and waits for the workers to finish the queued tasks,
// or for ctx to end.
func (q *DispatchQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.intake)
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case err := <-q.done:
		q.logger.InfoContext(ctx, "Dispatch workers stopped")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *DispatchQueue) work(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-q.intake:
			if !ok {
				return
			}
			q.metrics.SetQueueDepth(len(q.intake))
			q.process(ctx, worker, t)
		}
	}
}

func (q *DispatchQueue) process(ctx context.Context, worker int, t *task.Task) {
	logger := q.logger.With("task_id", t.ID().String(), "worker", worker)

	if err := t.Start(q.now()); err != nil {
		logger.ErrorContext(ctx, "Dispatch task cannot start", "error", err)
		return
	}
	if err := q.tasks.Update(ctx, t); err != nil {
		logger.WarnContext(ctx, "Failed to mark task started", "error", err)
	}

	result, err := q.run(ctx, t.Input())
	if err != nil {
		logger.ErrorContext(ctx, "Dispatch task failed", "error", err)
		_ = t.Fail(err, q.now())
		q.finish(ctx, t)
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		_ = t.Fail(fmt.Errorf("encode result: %w", err), q.now())
		q.finish(ctx, t)
		return
	}

	_ = t.Succeed(payload, q.now())
	q.finish(ctx, t)
	logger.InfoContext(ctx, "Dispatch task finished", "status", result.Status, "message", result.Message)
}

func (q *DispatchQueue) run(ctx context.Context, input task.Input) (commands.DispatchRoutesResult, error) {
	command, err := commands.NewDispatchRoutesCommand(input.APIKey, input.PizzeriaAddress, input.CapacityPerCourier)
	if err != nil {
		return commands.DispatchRoutesResult{}, err
	}
	return q.dispatcher.Handle(ctx, command)
}

// finish persists a terminal state even when ctx is already cancelled.
func (q *DispatchQueue) finish(ctx context.Context, t *task.Task) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	if err := q.tasks.Update(ctx, t); err != nil {
		q.logger.ErrorContext(ctx, "Failed to store task state",
			"task_id", t.ID().String(), "status", string(t.Status()), "error", err)
	}
	q.metrics.RecordTask(string(t.Status()))
}
