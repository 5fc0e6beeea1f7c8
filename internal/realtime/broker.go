package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// channelBuffer bounds how far a slow subscriber may lag before events are
// dropped. Dropped events are legal under at-least-once-with-reconcile
// semantics: a client that lost events re-queries on reconnect.
const channelBuffer = 64

// Broker is the in-process change feed. Every mutation the store gateway
// performs is published here and fanned out to the channels subscribed to
// the affected session.
type Broker struct {
	mu       sync.RWMutex
	channels map[string]map[*Channel]struct{}
	logger   *zap.Logger
}

// NewBroker creates a Broker.
func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{
		channels: make(map[string]map[*Channel]struct{}),
		logger:   logger,
	}
}

// OpenChannel creates a channel on the session's topic. The channel receives
// nothing until Subscribe is called on it.
func (b *Broker) OpenChannel(sessionID string) *Channel {
	ch := newChannel(b, sessionID)

	b.mu.Lock()
	set, ok := b.channels[sessionID]
	if !ok {
		set = make(map[*Channel]struct{})
		b.channels[sessionID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	return ch
}

// Publish delivers an event to every channel on the event's session topic.
// Never blocks: a full channel drops the event and the subscriber is
// expected to reconcile by re-querying.
func (b *Broker) Publish(ev *ChangeEvent) {
	if ev == nil || ev.SessionID == "" {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.channels[ev.SessionID] {
		select {
		case ch.events <- ev:
		default:
			b.logger.Warn("change event dropped, subscriber lagging",
				zap.String("session_id", ev.SessionID),
				zap.String("table", ev.Table))
		}
	}
}

// RemoveChannel releases a channel. Safe to call while a subscribe is in
// flight and safe to call twice; no handler runs after it returns.
func (b *Broker) RemoveChannel(ch *Channel) {
	if ch == nil {
		return
	}

	b.mu.Lock()
	if set, ok := b.channels[ch.sessionID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(b.channels, ch.sessionID)
		}
	}
	b.mu.Unlock()

	ch.close()
}

// SubscriberCount reports how many channels are open on a session's topic.
func (b *Broker) SubscriberCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels[sessionID])
}
