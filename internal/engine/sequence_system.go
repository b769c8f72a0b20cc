package engine

import (
	"strconv"
	"strings"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
)

// SequenceSystem runs the control room: buttons must be pressed in order.
type SequenceSystem struct{}

// NewSequenceSystem creates the sequence room rules.
func NewSequenceSystem() *SequenceSystem {
	return &SequenceSystem{}
}

// OnInput appends a press and checks it against the same position of the
// correct sequence. A wrong press fails the attempt and clears the sequence.
func (ss *SequenceSystem) OnInput(def room.Definition, st *room.SequenceState, in room.Input) Outcome {
	if in.Action != room.ActionPressButton {
		return unchanged("unsupported action")
	}
	id, err := strconv.Atoi(strings.TrimSpace(in.Value))
	if err != nil || !def.HasButton(id) {
		return unchanged("invalid button")
	}
	if st.Contains(id) {
		return unchanged("button already pressed")
	}

	st.Pressed = append(st.Pressed, id)
	pos := len(st.Pressed) - 1
	if pos >= len(def.CorrectSequence) || st.Pressed[pos] != def.CorrectSequence[pos] {
		st.Pressed = st.Pressed[:0]
		return Outcome{Transition: room.Failed, Detail: "wrong order", Then: room.Reset}
	}

	if len(st.Pressed) == len(def.CorrectSequence) {
		st.MarkSolved()
		return Outcome{Transition: room.Solved}
	}
	return Outcome{Transition: room.Progressed, Detail: strconv.Itoa(len(st.Pressed)) + "/" + strconv.Itoa(len(def.CorrectSequence))}
}
