package engine

import (
	"fmt"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
)

// ChemicalSystem runs the laboratory: pick the right chemicals, then mix.
type ChemicalSystem struct{}

// NewChemicalSystem creates the chemical room rules.
func NewChemicalSystem() *ChemicalSystem {
	return &ChemicalSystem{}
}

// OnInput toggles a chemical or mixes the current selection.
func (cs *ChemicalSystem) OnInput(def room.Definition, st *room.ChemicalState, in room.Input) Outcome {
	switch in.Action {
	case room.ActionToggleChemical:
		return cs.toggle(def, st, strings.ToUpper(strings.TrimSpace(in.Value)))
	case room.ActionMix:
		return cs.mix(def, st)
	default:
		return unchanged("unsupported action")
	}
}

func (cs *ChemicalSystem) toggle(def room.Definition, st *room.ChemicalState, id string) Outcome {
	if !def.HasChemical(id) {
		return unchanged("invalid chemical")
	}
	if i := st.IndexOf(id); i >= 0 {
		st.Selected = append(st.Selected[:i], st.Selected[i+1:]...)
		return Outcome{Transition: room.Progressed, Detail: "removed " + id}
	}
	if len(st.Selected) >= len(def.CorrectCombination) {
		return unchanged("selection full")
	}
	st.Selected = append(st.Selected, id)
	return Outcome{Transition: room.Progressed, Detail: "added " + id}
}

func (cs *ChemicalSystem) mix(def room.Definition, st *room.ChemicalState) Outcome {
	need := len(def.CorrectCombination)
	if len(st.Selected) != need {
		return Outcome{Transition: room.Failed, Detail: mixCountReason(need)}
	}

	if sameSet(mapset.Of(st.Selected...), mapset.Of(def.CorrectCombination...)) {
		st.MarkSolved()
		return Outcome{Transition: room.Solved}
	}
	st.Selected = st.Selected[:0]
	return Outcome{Transition: room.Failed, Detail: "wrong combination"}
}

func mixCountReason(need int) string {
	return fmt.Sprintf("must select exactly %d", need)
}

func sameSet(a, b mapset.Set[string]) bool {
	if a.Size() != b.Size() {
		return false
	}
	same := true
	a.Each(func(k string) {
		if !b.Has(k) {
			same = false
		}
	})
	return same
}
