package engine

import (
	"fmt"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

// Outcome is the result of one input or tick against a room.
// Then carries a follow-up transition that already happened, such as the
// automatic reset after a wrong sequence.
type Outcome struct {
	RoomID     int             `json:"roomId"`
	Transition room.Transition `json:"transition"`
	Detail     string          `json:"detail,omitempty"`
	Then       room.Transition `json:"then,omitempty"`
}

// Changed reports whether the room state was modified.
func (o Outcome) Changed() bool {
	return o.Transition != room.Unchanged
}

func unchanged(detail string) Outcome {
	return Outcome{Transition: room.Unchanged, Detail: detail}
}

// RoomEngine validates player input against the room catalog.
// It holds no session state; every call receives the state to work on.
type RoomEngine struct {
	catalog *room.Catalog
	logger  *logger.Logger

	// Sub-systems
	boxSystem       *BoxSystem
	sequenceSystem  *SequenceSystem
	chemicalSystem  *ChemicalSystem
	countdownSystem *CountdownSystem
	finalSystem     *FinalSystem
}

// NewRoomEngine wires one system per room kind.
func NewRoomEngine(catalog *room.Catalog, log *logger.Logger) *RoomEngine {
	return &RoomEngine{
		catalog: catalog,
		logger:  log,

		boxSystem:       NewBoxSystem(),
		sequenceSystem:  NewSequenceSystem(),
		chemicalSystem:  NewChemicalSystem(),
		countdownSystem: NewCountdownSystem(),
		finalSystem:     NewFinalSystem(),
	}
}

// Catalog returns the room definitions the engine evaluates against.
func (e *RoomEngine) Catalog() *room.Catalog {
	return e.catalog
}

// Submit evaluates in against room roomID, mutating st in place.
// Input on a solved room is Unchanged.
func (e *RoomEngine) Submit(roomID int, st room.State, in room.Input) (Outcome, error) {
	def, err := e.resolve(roomID, st)
	if err != nil {
		return Outcome{}, err
	}
	if st.IsSolved() {
		return e.stamp(roomID, unchanged("already solved")), nil
	}

	out, err := e.dispatch(def, st, in)
	if err != nil {
		return Outcome{}, err
	}
	return e.stamp(roomID, out), nil
}

// Tick advances time-driven rooms by one step. Other rooms are Unchanged.
func (e *RoomEngine) Tick(roomID int, st room.State) (Outcome, error) {
	def, err := e.resolve(roomID, st)
	if err != nil {
		return Outcome{}, err
	}
	if def.Kind != room.KindTimedCode {
		return e.stamp(roomID, unchanged("")), nil
	}
	timed, ok := st.(*room.TimedState)
	if !ok {
		return Outcome{}, fmt.Errorf("room %d: %w", roomID, ErrStateMismatch)
	}
	return e.stamp(roomID, e.countdownSystem.OnTick(def, timed)), nil
}

func (e *RoomEngine) resolve(roomID int, st room.State) (room.Definition, error) {
	def, err := e.catalog.Get(roomID)
	if err != nil {
		return room.Definition{}, err
	}
	if st == nil || st.Kind() != def.Kind {
		return room.Definition{}, fmt.Errorf("room %d: %w", roomID, ErrStateMismatch)
	}
	return def, nil
}

// dispatch routes the input to the system for the room's kind.
func (e *RoomEngine) dispatch(def room.Definition, st room.State, in room.Input) (Outcome, error) {
	var (
		out Outcome
		ok  bool
	)
	switch def.Kind {
	case room.KindBoxCode:
		var s *room.BoxState
		if s, ok = st.(*room.BoxState); ok {
			out = e.boxSystem.OnInput(def, s, in)
		}
	case room.KindSequence:
		var s *room.SequenceState
		if s, ok = st.(*room.SequenceState); ok {
			out = e.sequenceSystem.OnInput(def, s, in)
		}
	case room.KindChemical:
		var s *room.ChemicalState
		if s, ok = st.(*room.ChemicalState); ok {
			out = e.chemicalSystem.OnInput(def, s, in)
		}
	case room.KindTimedCode:
		var s *room.TimedState
		if s, ok = st.(*room.TimedState); ok {
			out = e.countdownSystem.OnInput(def, s, in)
		}
	case room.KindFinalCode:
		var s *room.FinalState
		if s, ok = st.(*room.FinalState); ok {
			out = e.finalSystem.OnInput(def, s, in)
		}
	}
	if !ok {
		return Outcome{}, fmt.Errorf("room %d: %w", def.ID, ErrStateMismatch)
	}
	return out, nil
}

func (e *RoomEngine) stamp(roomID int, out Outcome) Outcome {
	out.RoomID = roomID
	return out
}
