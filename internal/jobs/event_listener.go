package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/metrics"
)

const (
	DefaultReconnectDelay = 5 * time.Second

	changeEvent = "postgres_changes"

	// handoffSize bounds the changes waiting to be enqueued behind a slow task store.
	handoffSize = 16
)

// FeedState is the connection state of the EventListener.
type FeedState string

const (
	FeedConnecting   FeedState = "connecting"
	FeedSubscribed   FeedState = "subscribed"
	FeedDisconnected FeedState = "disconnected"
)

var feedStates = []string{string(FeedConnecting), string(FeedSubscribed), string(FeedDisconnected)}

// TaskEnqueuer accepts dispatch requests; implemented by DispatchQueue.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, input task.Input) (kernel.UUID, error)
}

type changeRecord struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
}

type changeMessage struct {
	Event   string `json:"event"`
	Payload struct {
		Data struct {
			Record changeRecord `json:"record"`
		} `json:"data"`
	} `json:"payload"`
}

// EventListener follows the order change feed and queues a dispatch cycle for
// every qualifying status change. It never dispatches inline: the read loop hands
// changes to a forwarding goroutine, so a slow task store cannot stall the feed.
// When that hand-off is full the change is dropped; the cycle already waiting
// covers every ready order.
type EventListener struct {
	feed      ports.ChangeFeed
	queue     TaskEnqueuer
	publisher ports.StatusPublisher
	input     task.Input
	delay     time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu    sync.RWMutex
	state FeedState
}

// NewEventListener creates a listener. input is the dispatch request queued for
// each change; delay is the pause between reconnect attempts.
func NewEventListener(
	feed ports.ChangeFeed,
	queue TaskEnqueuer,
	publisher ports.StatusPublisher,
	input task.Input,
	delay time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *EventListener {
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	input.TriggeredBy = "feed"

	return &EventListener{
		feed:      feed,
		queue:     queue,
		publisher: publisher,
		input:     input,
		delay:     delay,
		metrics:   m,
		logger:    logger.With("component", "event_listener"),
		state:     FeedConnecting,
	}
}

// State reports the current connection state.
func (l *EventListener) State() FeedState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Run cycles Connecting → Subscribed → Disconnected → Connecting until ctx ends.
func (l *EventListener) Run(ctx context.Context) {
	changes := make(chan changeRecord, handoffSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.forward(ctx, changes)
	}()
	defer wg.Wait()

	var messages <-chan []byte
	state := FeedConnecting

	for {
		l.setState(state)

		switch state {
		case FeedConnecting:
			ch, err := l.feed.Subscribe(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.WarnContext(ctx, "Change feed subscription failed", "error", err)
				state = FeedDisconnected
				continue
			}
			messages = ch
			state = FeedSubscribed

		case FeedSubscribed:
			l.logger.InfoContext(ctx, "Listening for order changes")
			l.consume(ctx, messages, changes)
			if ctx.Err() != nil {
				return
			}
			l.logger.WarnContext(ctx, "Change feed lost", "reconnect_in", l.delay.String())
			state = FeedDisconnected

		case FeedDisconnected:
			timer := time.NewTimer(l.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			state = FeedConnecting
		}
	}
}

func (l *EventListener) consume(ctx context.Context, messages <-chan []byte, changes chan<- changeRecord) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-messages:
			if !ok {
				return
			}
			l.handle(ctx, raw, changes)
		}
	}
}

func (l *EventListener) handle(ctx context.Context, raw []byte, changes chan<- changeRecord) {
	var msg changeMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		l.logger.WarnContext(ctx, "Skipping malformed change message", "error", err, "message", truncate(raw, 256))
		return
	}
	if msg.Event != changeEvent {
		return
	}

	record := msg.Payload.Data.Record
	status := order.Status(record.Status)
	if !status.IsIn(order.QualifyingStatuses()) {
		return
	}

	select {
	case changes <- record:
	default:
		l.logger.WarnContext(ctx, "Dispatch hand-off full, change not queued", "order_id", record.ID.String())
	}

	l.publisher.Publish(fmt.Sprintf("Order #%s status changed to %s", record.ID.String(), record.Status))
}

// forward enqueues handed-off changes one at a time until ctx ends.
func (l *EventListener) forward(ctx context.Context, changes <-chan changeRecord) {
	for {
		select {
		case <-ctx.Done():
			return
		case record := <-changes:
			id, err := l.queue.Enqueue(ctx, l.input)
			if err != nil {
				l.logger.WarnContext(ctx, "Dispatch not queued", "order_id", record.ID.String(), "error", err)
				continue
			}
			l.logger.InfoContext(ctx, "Dispatch queued",
				"order_id", record.ID.String(), "status", record.Status, "task_id", id.String())
		}
	}
}

func (l *EventListener) setState(state FeedState) {
	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
	l.metrics.SetFeedState(string(state), feedStates)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
