package sync

import (
	stdsync "sync"

	"github.com/tehtaankatu/tasting/internal/models"
	"github.com/tehtaankatu/tasting/internal/realtime"
)

// Subscriber ties a broker channel to a reducer-held SessionView. One
// logical subscription per session per client; Close releases the channel
// and guarantees no further mutation of the view.
type Subscriber struct {
	broker  *realtime.Broker
	channel *realtime.Channel

	mu   stdsync.RWMutex
	view SessionView

	// refresh, when set, runs after each guess event so the owner can
	// re-derive state the event alone cannot carry
	refresh func()

	closed bool
}

// NewSubscriber creates a subscriber seeded with a snapshot view.
func NewSubscriber(broker *realtime.Broker, snapshot SessionView, refresh func()) *Subscriber {
	return &Subscriber{
		broker:  broker,
		view:    snapshot,
		refresh: refresh,
	}
}

// Start opens the channel and begins folding events. Call once.
func (s *Subscriber) Start() {
	s.mu.Lock()
	if s.closed || s.channel != nil {
		s.mu.Unlock()
		return
	}
	s.channel = s.broker.OpenChannel(s.view.SessionID)
	ch := s.channel
	s.mu.Unlock()

	ch.OnChange(realtime.TableAll, s.apply)
	ch.Subscribe()
}

func (s *Subscriber) apply(ev *realtime.ChangeEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.view = Reduce(s.view, ev)
	refresh := s.refresh
	s.mu.Unlock()

	if refresh != nil && ev.Table == realtime.TableGuesses {
		refresh()
	}
}

// View returns a copy of the current view.
func (s *Subscriber) View() SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := s.view
	players := make([]models.Player, len(view.Players))
	copy(players, view.Players)
	view.Players = players
	submitted := make(map[string]bool, len(view.Submitted))
	for id := range view.Submitted {
		submitted[id] = true
	}
	view.Submitted = submitted
	return view
}

// Close releases the subscription. Safe to call twice and safe to call
// concurrently with Start; the view never changes after Close returns.
func (s *Subscriber) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ch := s.channel
	s.mu.Unlock()

	if ch != nil {
		s.broker.RemoveChannel(ch)
	}
}
