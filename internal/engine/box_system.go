package engine

import (
	"strconv"
	"strings"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
)

// BoxSystem runs the box-code room: open every box, read the code.
type BoxSystem struct{}

// NewBoxSystem creates the box room rules.
func NewBoxSystem() *BoxSystem {
	return &BoxSystem{}
}

// OnInput opens one box. Opening is idempotent. Once every box is open the
// digits, ordered by box id, are compared with the room code.
func (bs *BoxSystem) OnInput(def room.Definition, st *room.BoxState, in room.Input) Outcome {
	if in.Action != room.ActionOpenBox {
		return unchanged("unsupported action")
	}
	id, err := strconv.Atoi(strings.TrimSpace(in.Value))
	if err != nil {
		return unchanged("invalid box")
	}
	box, ok := def.Box(id)
	if !ok {
		return unchanged("invalid box")
	}
	if st.IsOpen(id) {
		return unchanged("box already open")
	}

	st.Opened = append(st.Opened, id)
	if len(st.Opened) < len(def.Boxes) {
		return Outcome{Transition: room.Progressed, Detail: box.Hint}
	}

	code := st.Code(def)
	if code == def.CorrectCode {
		st.MarkSolved()
		return Outcome{Transition: room.Solved, Detail: "code " + code}
	}
	// unreachable with the default catalog
	return Outcome{Transition: room.Progressed, Detail: "code " + code}
}
