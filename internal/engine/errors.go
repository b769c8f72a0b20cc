package engine

import "errors"

var (
	// ErrStateMismatch means a room state does not belong to the room's kind.
	ErrStateMismatch = errors.New("room state does not match room kind")

	// ErrRoomLocked is returned when moving on before the current room is solved.
	ErrRoomLocked = errors.New("room is locked")

	// ErrNotCurrentRoom is returned when acting on a room other than the current one.
	ErrNotCurrentRoom = errors.New("not the current room")

	// ErrNotInRoom is returned for gameplay calls before a game is started.
	ErrNotInRoom = errors.New("no game in progress")

	// ErrGameCompleted is returned for gameplay calls after the last room.
	ErrGameCompleted = errors.New("game already completed")
)
