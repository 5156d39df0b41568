package ports

import "context"

// ChangeFeed is a subscription source of raw order-change messages.
//
// Subscribe returns a channel that is closed when the connection is lost or ctx
// ends. Callers reconnect by calling Subscribe again.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// StatusPublisher fans human-readable status lines out to live subscribers.
type StatusPublisher interface {
	Publish(line string)
}
