package realtime

import (
	"encoding/json"
	"time"
)

// EventType is a row-level change kind.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Table names carried on change events, matching the store tables.
const (
	TableSessions = "game_sessions"
	TablePlayers  = "game_players"
	TableRounds   = "rounds"
	TableGuesses  = "player_guesses"
)

// ChangeEvent is one row-level change notification. Delivery is
// at-least-once and unordered across tables; consumers must fold events
// idempotently.
type ChangeEvent struct {
	Table     string          `json:"table"`
	Type      EventType       `json:"event_type"`
	SessionID string          `json:"session_id"`
	New       json.RawMessage `json:"new,omitempty"`
	Old       json.RawMessage `json:"old,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewChangeEvent builds an event, marshaling the affected rows. Rows that
// fail to marshal become null payloads rather than lost events.
func NewChangeEvent(table string, eventType EventType, sessionID string, newRow, oldRow interface{}) *ChangeEvent {
	ev := &ChangeEvent{
		Table:     table,
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UnixNano(),
	}
	if newRow != nil {
		if data, err := json.Marshal(newRow); err == nil {
			ev.New = data
		}
	}
	if oldRow != nil {
		if data, err := json.Marshal(oldRow); err == nil {
			ev.Old = data
		}
	}
	return ev
}

// Publisher is the hook the store gateway emits change events through.
type Publisher interface {
	Publish(ev *ChangeEvent)
}

// NopPublisher drops every event; used where no feed is wired.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(ev *ChangeEvent) {}
