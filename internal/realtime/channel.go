package realtime

import (
	"sync"
)

// Handler consumes one change event.
type Handler func(ev *ChangeEvent)

// TableAll registers a handler for every table on the channel.
const TableAll = "*"

// Channel is one logical subscription to a session's change feed. Handlers
// for the three entity streams are registered before Subscribe; after
// release (Broker.RemoveChannel) no handler is invoked again, buffered
// events included.
type Channel struct {
	broker    *Broker
	sessionID string
	events    chan *ChangeEvent

	mu         sync.Mutex
	handlers   map[string][]Handler
	subscribed bool
	closed     bool
	done       chan struct{}
}

func newChannel(broker *Broker, sessionID string) *Channel {
	return &Channel{
		broker:    broker,
		sessionID: sessionID,
		events:    make(chan *ChangeEvent, channelBuffer),
		handlers:  make(map[string][]Handler),
		done:      make(chan struct{}),
	}
}

// SessionID returns the topic this channel is bound to.
func (c *Channel) SessionID() string {
	return c.sessionID
}

// OnChange registers a handler for one table (or TableAll). Returns the
// channel for chaining. Registration after Subscribe is ignored.
func (c *Channel) OnChange(table string, handler Handler) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscribed || c.closed {
		return c
	}
	c.handlers[table] = append(c.handlers[table], handler)
	return c
}

// Subscribe starts delivery. Call once; further calls are no-ops.
func (c *Channel) Subscribe() {
	c.mu.Lock()
	if c.subscribed || c.closed {
		c.mu.Unlock()
		return
	}
	c.subscribed = true
	c.mu.Unlock()

	go c.dispatch()
}

func (c *Channel) dispatch() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.events:
			c.deliver(ev)
		}
	}
}

// deliver invokes handlers unless the channel was released. The closed
// check runs under the lock so close() strictly precedes or follows a
// whole delivery, never lands inside one.
func (c *Channel) deliver(ev *ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, h := range c.handlers[ev.Table] {
		h(ev)
	}
	for _, h := range c.handlers[TableAll] {
		h(ev)
	}
}

func (c *Channel) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()
}
