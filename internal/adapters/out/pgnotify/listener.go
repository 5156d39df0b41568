// Package pgnotify is the order change feed: PostgreSQL LISTEN/NOTIFY through
// lib/pq. The orders table trigger installed by InstallTrigger publishes
// {"event":"postgres_changes","payload":{"data":{"record":{"id":..,"status":..}}}}.
package pgnotify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
)

const (
	DefaultChannel = "order_changes"
	// pingInterval keeps an idle connection checked; a dead one surfaces as a disconnect.
	pingInterval = 90 * time.Second
	bufferSize   = 64
)

var ErrChannelRequired = errors.New("notification channel is required")

// Listener implements ports.ChangeFeed. Every Subscribe opens its own connection;
// reconnecting is left to the caller.
type Listener struct {
	dsn     string
	channel string
	logger  *slog.Logger
}

func NewListener(dsn, channel string, logger *slog.Logger) (*Listener, error) {
	if channel == "" {
		return nil, ErrChannelRequired
	}
	return &Listener{
		dsn:     dsn,
		channel: channel,
		logger:  logger.With("component", "pgnotify", "channel", channel),
	}, nil
}

// Subscribe starts listening. The returned channel carries raw payloads and is
// closed when the connection drops, fails to establish, or ctx ends.
func (l *Listener) Subscribe(ctx context.Context) (<-chan []byte, error) {
	lost := make(chan struct{})
	var once sync.Once
	markLost := func() { once.Do(func() { close(lost) }) }

	listener := pq.NewListener(l.dsn, time.Second, time.Second, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			l.logger.Info("Change feed connected")
		case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
			l.logger.Warn("Change feed connection lost", "error", err)
			markLost()
		case pq.ListenerEventReconnected:
			// notifications sent while disconnected are gone; let the caller resubscribe
			markLost()
		}
	})

	if err := listener.Listen(l.channel); err != nil {
		_ = listener.Close()
		return nil, err
	}

	out := make(chan []byte, bufferSize)
	go func() {
		defer close(out)
		defer func() { _ = listener.Close() }()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-lost:
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				if n == nil {
					continue
				}
				select {
				case out <- []byte(n.Extra):
				case <-ctx.Done():
					return
				}
			case <-ticker.C:
				go func() {
					if err := listener.Ping(); err != nil {
						l.logger.Warn("Change feed ping failed", "error", err)
					}
				}()
			}
		}
	}()

	return out, nil
}
