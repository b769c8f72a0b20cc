// Package events provides the session event log of the game.
// It is an append-only record of every room load, transition and unlock,
// used for replay, plus a bounded live feed pushed to connected clients.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeSessionStarted      EventType = "SESSION_STARTED"
	EventTypeRoomLoaded          EventType = "ROOM_LOADED"
	EventTypeRoomState           EventType = "ROOM_STATE"
	EventTypeRoomTransition      EventType = "ROOM_TRANSITION"
	EventTypeAchievementUnlocked EventType = "ACHIEVEMENT_UNLOCKED"
	EventTypeGameCompleted       EventType = "GAME_COMPLETED"
	EventTypeQuote               EventType = "QUOTE"
)

// GameEvent represents an immutable record of something that happened in a session.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	RoomID    int         `json:"room_id,omitempty"`
	Payload   interface{} `json:"payload"` // Event-specific data

	// Ephemeral events reach live clients but are never persisted.
	Ephemeral bool `json:"-"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// DefaultFeedSize is how many recent events the live feed retains.
const DefaultFeedSize = 256

// EventLog keeps the session history in memory, optionally written through
// to a persister. Ephemeral events only enter the live feed, a bounded
// window read by cursor, so they never accumulate.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	feed      []GameEvent
	feedSize  int
	next      int // cursor of the next appended event
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		feedSize:  DefaultFeedSize,
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
// The event is kept in memory even when the persister fails; that error is returned.
func (el *EventLog) Append(event GameEvent) error {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	if !event.Ephemeral {
		el.events = append(el.events, event)
	}
	el.feed = append(el.feed, event)
	if len(el.feed) > 2*el.feedSize {
		el.feed = append([]GameEvent(nil), el.feed[len(el.feed)-el.feedSize:]...)
	}
	el.next++
	el.mu.Unlock()

	if el.persister != nil && !event.Ephemeral {
		return el.persister.Append(event)
	}
	return nil
}

// GetBySession returns all events of one session.
func (el *EventLog) GetBySession(sessionID string) []GameEvent {
	return el.filter(func(e GameEvent) bool { return e.SessionID == sessionID })
}

// GetByType returns all events of one type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	return el.filter(func(e GameEvent) bool { return e.Type == t })
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return append([]GameEvent(nil), el.events...)
}

// Cursor returns the position a reader should start from to see only
// events appended from now on.
func (el *EventLog) Cursor() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.next
}

// Since returns the live feed from cursor on, ephemeral events included,
// and the cursor to pass next time. A reader that fell further behind than
// the feed window resumes at the oldest retained event.
func (el *EventLog) Since(cursor int) ([]GameEvent, int) {
	el.mu.RLock()
	defer el.mu.RUnlock()

	first := el.next - len(el.feed)
	if cursor < first {
		cursor = first
	}
	if cursor >= el.next {
		return nil, el.next
	}
	return append([]GameEvent(nil), el.feed[cursor-first:]...), el.next
}

// Len returns the number of events in the history. Ephemeral events are
// not counted.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

func (el *EventLog) filter(keep func(GameEvent) bool) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
