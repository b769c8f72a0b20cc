package events

import (
	"sync"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/score"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/quote"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

// Recorder turns controller notifications into GameEvents on an EventLog.
// Clients follow the log, so the recorder is the presentation layer's only input.
type Recorder struct {
	eventLog *EventLog
	logger   *logger.Logger
	now      func() time.Time

	mu        sync.Mutex
	sessionID string
}

// NewRecorder creates a recorder writing to eventLog.
func NewRecorder(eventLog *EventLog, log *logger.Logger) *Recorder {
	return &Recorder{
		eventLog: eventLog,
		logger:   log,
		now:      time.Now,
	}
}

// SessionID returns the session events are currently tagged with.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// OnSessionStarted tags every following event with sessionID.
func (r *Recorder) OnSessionStarted(sessionID string) {
	r.mu.Lock()
	r.sessionID = sessionID
	r.mu.Unlock()

	r.append(EventTypeSessionStarted, 0, map[string]string{"session_id": sessionID}, false)
}

// OnRoomLoaded records that the player entered a room.
func (r *Recorder) OnRoomLoaded(def room.Definition, st room.State) {
	r.append(EventTypeRoomLoaded, def.ID, RoomLoadedPayload{Room: room.NewView(def, st)}, false)
}

// OnRoomState pushes the latest view of a room to live clients.
func (r *Recorder) OnRoomState(def room.Definition, st room.State) {
	r.append(EventTypeRoomState, def.ID, RoomStatePayload{Room: room.NewView(def, st)}, true)
}

// OnTransition records a room outcome.
func (r *Recorder) OnTransition(roomID int, t room.Transition, detail string) {
	r.append(EventTypeRoomTransition, roomID, TransitionPayload{
		Transition: t.String(),
		Detail:     detail,
	}, false)
	r.logger.Event("ROOM_"+t.String(), r.SessionID(), detail)
}

// OnAchievementUnlocked records a newly unlocked badge.
func (r *Recorder) OnAchievementUnlocked(name string) {
	r.append(EventTypeAchievementUnlocked, 0, AchievementPayload{Name: name}, false)
}

// OnGameCompleted records the final time of a run.
func (r *Recorder) OnGameCompleted(elapsed int, achievements []string) {
	r.append(EventTypeGameCompleted, 0, GameCompletedPayload{
		Elapsed:      elapsed,
		Formatted:    score.FormatTime(elapsed),
		Achievements: append([]string(nil), achievements...),
	}, false)
}

// OnQuote records the quote delivered after completion.
func (r *Recorder) OnQuote(q quote.Quote) {
	r.append(EventTypeQuote, 0, QuotePayload{Text: q.Text, Author: q.Author}, false)
}

func (r *Recorder) append(t EventType, roomID int, payload interface{}, ephemeral bool) {
	event := GameEvent{
		ID:        GenerateEventID(),
		Timestamp: r.now(),
		Type:      t,
		SessionID: r.SessionID(),
		RoomID:    roomID,
		Payload:   payload,
		Ephemeral: ephemeral,
	}
	if err := r.eventLog.Append(event); err != nil {
		r.logger.Errorf("Failed to persist %s event: %v", t, err)
	}
}
