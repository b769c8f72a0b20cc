package events

import (
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
)

// RoomLoadedPayload carries the room as the player should now see it.
type RoomLoadedPayload struct {
	Room room.View `json:"room"`
}

// RoomStatePayload is the current view of a room after it changed.
type RoomStatePayload struct {
	Room room.View `json:"room"`
}

// TransitionPayload holds the details for one room outcome.
type TransitionPayload struct {
	Transition string `json:"transition"`
	Detail     string `json:"detail,omitempty"`
}

// AchievementPayload names an unlocked badge.
type AchievementPayload struct {
	Name string `json:"name"`
}

// GameCompletedPayload is the final score of a run.
type GameCompletedPayload struct {
	Elapsed      int      `json:"elapsed"`
	Formatted    string   `json:"formatted"`
	Achievements []string `json:"achievements"`
}

// QuotePayload is the quote shown after completion.
type QuotePayload struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}
