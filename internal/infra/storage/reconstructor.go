// Package storage - reconstructor.go
// Rebuilds a session summary from its event log.
package storage

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Event types as written by the session log.
const (
	EventRoomLoaded          = "ROOM_LOADED"
	EventRoomTransition      = "ROOM_TRANSITION"
	EventAchievementUnlocked = "ACHIEVEMENT_UNLOCKED"
	EventGameCompleted       = "GAME_COMPLETED"
	EventQuote               = "QUOTE"
)

// Reconstructor folds a session's events into a SessionRecap.
// This is used for the replay endpoint and for auditing runs after the fact.
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new session reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// SessionRecap is the state of a session derived from its events alone.
type SessionRecap struct {
	SessionID      string       `json:"session_id"`
	StartedAt      time.Time    `json:"started_at"`
	LastEventAt    time.Time    `json:"last_event_at"`
	CurrentRoom    int          `json:"current_room"`
	RoomsSolved    []int        `json:"rooms_solved"`
	Failures       map[int]int  `json:"failures"`
	Resets         int          `json:"resets"`
	Achievements   []string     `json:"achievements"`
	Completed      bool         `json:"completed"`
	ElapsedSeconds int          `json:"elapsed_seconds,omitempty"`
	Events         []RecapEvent `json:"events"`
}

// RecapEvent is a simplified event for the replay screen.
type RecapEvent struct {
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	RoomID    int    `json:"room_id,omitempty"`
	Summary   string `json:"summary"` // Human-readable description
	Impact    string `json:"impact"`  // "POSITIVE", "NEGATIVE", "NEUTRAL"
}

// Rebuild reconstructs a session from its events. It returns (nil, nil)
// for a session with no events.
func (r *Reconstructor) Rebuild(ctx context.Context, sessionID string) (*SessionRecap, error) {
	events, err := r.eventRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for session: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return Fold(sessionID, events), nil
}

// Fold applies events in order.
func Fold(sessionID string, events []GameEvent) *SessionRecap {
	recap := &SessionRecap{
		SessionID:    sessionID,
		Failures:     make(map[int]int),
		RoomsSolved:  make([]int, 0),
		Achievements: make([]string, 0),
		Events:       make([]RecapEvent, 0, len(events)),
	}
	solved := make(map[int]bool)

	for i, e := range events {
		if i == 0 {
			recap.StartedAt = e.Timestamp
		}
		recap.LastEventAt = e.Timestamp

		switch e.EventType {
		case EventRoomLoaded:
			recap.CurrentRoom = e.RoomID
		case EventRoomTransition:
			switch stringField(e.Payload, "transition") {
			case "SOLVED":
				if !solved[e.RoomID] {
					solved[e.RoomID] = true
					recap.RoomsSolved = append(recap.RoomsSolved, e.RoomID)
				}
			case "FAILED":
				recap.Failures[e.RoomID]++
			case "RESET":
				recap.Resets++
			}
		case EventAchievementUnlocked:
			if name := stringField(e.Payload, "name"); name != "" {
				recap.Achievements = append(recap.Achievements, name)
			}
		case EventGameCompleted:
			recap.Completed = true
			if v, ok := e.Payload["elapsed"].(float64); ok {
				recap.ElapsedSeconds = int(v)
			}
		}

		recap.Events = append(recap.Events, RecapEvent{
			Timestamp: e.Timestamp.Format(time.RFC3339),
			EventType: e.EventType,
			RoomID:    e.RoomID,
			Summary:   summarize(e),
			Impact:    impact(e),
		})
	}

	sort.Ints(recap.RoomsSolved)
	return recap
}

func summarize(e GameEvent) string {
	switch e.EventType {
	case EventRoomLoaded:
		return fmt.Sprintf("Entered room %d.", e.RoomID)
	case EventRoomTransition:
		detail := stringField(e.Payload, "detail")
		switch stringField(e.Payload, "transition") {
		case "SOLVED":
			return fmt.Sprintf("Solved room %d.", e.RoomID)
		case "FAILED":
			if detail != "" {
				return fmt.Sprintf("Failed in room %d: %s.", e.RoomID, detail)
			}
			return fmt.Sprintf("Failed in room %d.", e.RoomID)
		case "RESET":
			return fmt.Sprintf("Room %d was reset.", e.RoomID)
		default:
			return fmt.Sprintf("Made progress in room %d.", e.RoomID)
		}
	case EventAchievementUnlocked:
		return "Unlocked " + stringField(e.Payload, "name") + "."
	case EventGameCompleted:
		return "Escaped from all rooms."
	case EventQuote:
		return "Received a quote."
	default:
		return "Something happened..."
	}
}

func impact(e GameEvent) string {
	switch e.EventType {
	case EventAchievementUnlocked, EventGameCompleted:
		return "POSITIVE"
	case EventRoomTransition:
		switch stringField(e.Payload, "transition") {
		case "SOLVED", "PROGRESSED":
			return "POSITIVE"
		case "FAILED", "RESET":
			return "NEGATIVE"
		}
	}
	return "NEUTRAL"
}

func stringField(payload map[string]interface{}, key string) string {
	s, _ := payload[key].(string)
	return s
}
