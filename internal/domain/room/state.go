package room

import "sort"

// State is the mutable working state of one room during a session.
// Each room kind has its own concrete type carrying only its fields.
type State interface {
	Kind() Kind
	IsSolved() bool
	MarkSolved()
	Clone() State
}

// Progress holds the solved flag shared by every room kind.
// Solved is monotonic: nothing but a fresh state clears it.
type Progress struct {
	Solved bool `json:"solved"`
}

func (p *Progress) IsSolved() bool { return p.Solved }
func (p *Progress) MarkSolved()    { p.Solved = true }

// BoxState tracks which boxes have been opened, in click order.
type BoxState struct {
	Progress
	Opened []int `json:"openedBoxes"`
}

func (s *BoxState) Kind() Kind { return KindBoxCode }

func (s *BoxState) Clone() State {
	c := *s
	c.Opened = append([]int(nil), s.Opened...)
	return &c
}

// IsOpen reports whether box id has been opened.
func (s *BoxState) IsOpen(id int) bool {
	for _, o := range s.Opened {
		if o == id {
			return true
		}
	}
	return false
}

// Code concatenates the values of the opened boxes ordered by box id.
func (s *BoxState) Code(def Definition) string {
	ids := append([]int(nil), s.Opened...)
	sort.Ints(ids)
	code := make([]byte, 0, len(ids))
	for _, id := range ids {
		if b, ok := def.Box(id); ok {
			code = append(code, byte('0'+b.Number))
		}
	}
	return string(code)
}

// SequenceState tracks the buttons pressed so far.
type SequenceState struct {
	Progress
	Pressed []int `json:"sequence"`
}

func (s *SequenceState) Kind() Kind { return KindSequence }

func (s *SequenceState) Clone() State {
	c := *s
	c.Pressed = append([]int(nil), s.Pressed...)
	return &c
}

// Contains reports whether button id is already part of the sequence.
func (s *SequenceState) Contains(id int) bool {
	for _, p := range s.Pressed {
		if p == id {
			return true
		}
	}
	return false
}

// ChemicalState tracks the currently selected chemicals in selection order.
type ChemicalState struct {
	Progress
	Selected []string `json:"selectedChemicals"`
}

func (s *ChemicalState) Kind() Kind { return KindChemical }

func (s *ChemicalState) Clone() State {
	c := *s
	c.Selected = append([]string(nil), s.Selected...)
	return &c
}

// IndexOf returns the selection index of id, or -1.
func (s *ChemicalState) IndexOf(id string) int {
	for i, sel := range s.Selected {
		if sel == id {
			return i
		}
	}
	return -1
}

// TimedState is the countdown room. Remaining counts down once per tick;
// Expired marks the window between running out and the automatic reset.
type TimedState struct {
	Progress
	Remaining    int    `json:"countdown"`
	Code         string `json:"code"`
	Expired      bool   `json:"expired"`
	ExpiredTicks int    `json:"expiredTicks"`
}

func (s *TimedState) Kind() Kind { return KindTimedCode }

func (s *TimedState) Clone() State {
	c := *s
	return &c
}

// FinalState records the digits revealed by wrong submissions.
// Revealed maps a code position to the digit that was correct there.
type FinalState struct {
	Progress
	Revealed map[int]int `json:"foundDigits"`
}

func (s *FinalState) Kind() Kind { return KindFinalCode }

func (s *FinalState) Clone() State {
	c := *s
	c.Revealed = make(map[int]int, len(s.Revealed))
	for k, v := range s.Revealed {
		c.Revealed[k] = v
	}
	return &c
}

// Positions returns the revealed positions in ascending order.
func (s *FinalState) Positions() []int {
	pos := make([]int, 0, len(s.Revealed))
	for p := range s.Revealed {
		pos = append(pos, p)
	}
	sort.Ints(pos)
	return pos
}

// NewState builds the initial working state for a definition.
func NewState(def Definition) State {
	switch def.Kind {
	case KindBoxCode:
		return &BoxState{}
	case KindSequence:
		return &SequenceState{}
	case KindChemical:
		return &ChemicalState{}
	case KindTimedCode:
		return &TimedState{Remaining: def.Countdown}
	case KindFinalCode:
		return &FinalState{Revealed: make(map[int]int)}
	default:
		return nil
	}
}
