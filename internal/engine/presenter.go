package engine

import (
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/quote"
)

// Presenter receives the notifications of a session. States passed in are
// copies; the core never reads anything back from the presenter.
type Presenter interface {
	OnRoomLoaded(def room.Definition, st room.State)
	OnTransition(roomID int, t room.Transition, detail string)
	OnAchievementUnlocked(name string)
	OnGameCompleted(elapsedSeconds int, achievements []string)
}

// QuoteReceiver is implemented by presenters that show the completion quote.
type QuoteReceiver interface {
	OnQuote(q quote.Quote)
}

// SessionObserver is implemented by presenters that track session ids.
type SessionObserver interface {
	OnSessionStarted(sessionID string)
}

// StateReceiver is implemented by presenters that redraw a room after
// every change, including countdown ticks.
type StateReceiver interface {
	OnRoomState(def room.Definition, st room.State)
}

// NopPresenter ignores every notification.
type NopPresenter struct{}

func (NopPresenter) OnRoomLoaded(room.Definition, room.State)  {}
func (NopPresenter) OnTransition(int, room.Transition, string) {}
func (NopPresenter) OnAchievementUnlocked(string)              {}
func (NopPresenter) OnGameCompleted(int, []string)             {}
