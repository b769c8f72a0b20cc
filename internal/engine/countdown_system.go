package engine

import (
	"strings"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
)

// ResetDelayTicks is how many ticks an expired countdown waits before it
// resets the room.
const ResetDelayTicks = 2

// CountdownSystem runs the machine room: type the code before time runs out.
type CountdownSystem struct{}

// NewCountdownSystem creates the timed room rules.
func NewCountdownSystem() *CountdownSystem {
	return &CountdownSystem{}
}

// OnInput checks a submitted code. The comparison is on the raw string.
func (cs *CountdownSystem) OnInput(def room.Definition, st *room.TimedState, in room.Input) Outcome {
	if in.Action != room.ActionSubmitCode {
		return unchanged("unsupported action")
	}
	if st.Expired {
		return unchanged("time expired")
	}
	code := in.Value
	if strings.TrimSpace(code) == "" {
		return unchanged("empty code")
	}

	if code == def.CorrectCode {
		st.Code = code
		st.Remaining = 0
		st.MarkSolved()
		return Outcome{Transition: room.Solved}
	}
	st.Code = ""
	return Outcome{Transition: room.Failed, Detail: "wrong code"}
}

// OnTick counts down one step. Reaching zero fails the room; after
// ResetDelayTicks more ticks the countdown and input are reset.
func (cs *CountdownSystem) OnTick(def room.Definition, st *room.TimedState) Outcome {
	if st.IsSolved() {
		return unchanged("")
	}

	if st.Expired {
		st.ExpiredTicks++
		if st.ExpiredTicks < ResetDelayTicks {
			return unchanged("")
		}
		st.Remaining = def.Countdown
		st.Code = ""
		st.Expired = false
		st.ExpiredTicks = 0
		return Outcome{Transition: room.Reset, Detail: "countdown restarted"}
	}

	st.Remaining--
	if st.Remaining > 0 {
		return Outcome{Transition: room.Progressed}
	}
	st.Remaining = 0
	st.Code = ""
	st.Expired = true
	st.ExpiredTicks = 0
	return Outcome{Transition: room.Failed, Detail: "time expired"}
}
