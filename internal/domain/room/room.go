// Package room defines the puzzle rooms of the escape game: their static
// definitions, the per-kind working state and the transition vocabulary.
// This package is PURE and must NOT import any infrastructure packages.
package room

import (
	"errors"
	"fmt"
)

// ErrUnknownRoom is returned when a room id falls outside the catalog.
var ErrUnknownRoom = errors.New("unknown room")

// Kind identifies the puzzle mechanic of a room.
type Kind string

const (
	KindBoxCode   Kind = "BOX_CODE"
	KindSequence  Kind = "SEQUENCE"
	KindChemical  Kind = "CHEMICAL"
	KindTimedCode Kind = "TIMED_CODE"
	KindFinalCode Kind = "FINAL_CODE"
)

// Transition is the outcome of evaluating one input (or tick) against a room.
type Transition int

const (
	Unchanged Transition = iota
	Progressed
	Solved
	Failed
	Reset
)

func (t Transition) String() string {
	switch t {
	case Unchanged:
		return "UNCHANGED"
	case Progressed:
		return "PROGRESSED"
	case Solved:
		return "SOLVED"
	case Failed:
		return "FAILED"
	case Reset:
		return "RESET"
	default:
		return fmt.Sprintf("TRANSITION(%d)", int(t))
	}
}

// MarshalText keeps transitions readable on the wire.
func (t Transition) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Action is the kind of player input sent to a room.
type Action string

const (
	ActionOpenBox        Action = "open_box"
	ActionPressButton    Action = "press_button"
	ActionToggleChemical Action = "toggle_chemical"
	ActionMix            Action = "mix"
	ActionSubmitCode     Action = "submit_code"
)

// Input is a single player event. Value carries the box/button/chemical id
// or the typed code, depending on Action.
type Input struct {
	Action Action `json:"action"`
	Value  string `json:"value,omitempty"`
}

// Achievement is the badge unlocked when a room (or the whole game) is solved.
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompletionAchievement is unlocked when the player escapes the last room.
var CompletionAchievement = Achievement{
	Name:        "Escape Artist",
	Description: "You escaped from all rooms!",
}
