package session

import (
	"github.com/ethereum/go-ethereum/event"
)

// EventType distinguishes wallet lifecycle broadcasts.
type EventType int

// Wallet lifecycle events.
const (
	// EventConnected fires after a connect or silent reconnect succeeds.
	EventConnected EventType = iota

	// EventDisconnected fires after state has been reset to disconnected.
	EventDisconnected
)

// Event is the payload broadcast to feed subscribers. Unlike Subscribe
// listeners, feed subscribers receive events asynchronously over channels
// and may live in parts of the application that never read wallet state
// directly.
type Event struct {
	Type    EventType
	Address string
	Balance float64
}

// SubscribeEvents delivers wallet lifecycle events to sink until the
// returned subscription is unsubscribed. Delivery blocks until every sink
// accepts, so subscribers should use buffered channels or drain promptly.
func (s *Store) SubscribeEvents(sink chan<- Event) event.Subscription {
	return s.scope.Track(s.feed.Subscribe(sink))
}

// closeEventScope tears down all feed subscriptions. Used on Close.
func (s *Store) closeEventScope() {
	s.scope.Close()
}
