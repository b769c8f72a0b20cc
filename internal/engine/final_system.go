package engine

import (
	"strings"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
)

// FinalSystem runs the exit room: one five digit code built from the
// earlier rooms. Wrong guesses reveal the digits they got right.
type FinalSystem struct{}

// NewFinalSystem creates the final room rules.
func NewFinalSystem() *FinalSystem {
	return &FinalSystem{}
}

// OnInput checks a submitted code. Revealed digits accumulate across
// guesses and are never hidden again.
func (fs *FinalSystem) OnInput(def room.Definition, st *room.FinalState, in room.Input) Outcome {
	if in.Action != room.ActionSubmitCode {
		return unchanged("unsupported action")
	}
	code := in.Value
	if strings.TrimSpace(code) == "" {
		return unchanged("empty code")
	}

	if code == def.FinalCode() {
		for i, d := range def.CorrectDigits {
			st.Revealed[i] = d
		}
		st.MarkSolved()
		return Outcome{Transition: room.Solved}
	}

	found := 0
	for i := 0; i < len(code) && i < len(def.CorrectDigits); i++ {
		c := code[i]
		if c < '0' || c > '9' {
			continue
		}
		if int(c-'0') == def.CorrectDigits[i] {
			if _, ok := st.Revealed[i]; !ok {
				found++
			}
			st.Revealed[i] = def.CorrectDigits[i]
		}
	}

	detail := "wrong code"
	if found > 0 {
		detail = "wrong code, new digits revealed"
	}
	return Outcome{Transition: room.Failed, Detail: detail}
}
