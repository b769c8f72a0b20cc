package room

// View is what a client may see of a room: its text and controls, never
// its solution. Box digits appear only once the box is open.
type View struct {
	ID          int         `json:"id"`
	Kind        Kind        `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Achievement string      `json:"achievement,omitempty"`
	Boxes       []BoxView   `json:"boxes,omitempty"`
	Buttons     []Button    `json:"buttons,omitempty"`
	Chemicals   []Chemical  `json:"chemicals,omitempty"`
	Countdown   int         `json:"countdown,omitempty"`
	CodeLength  int         `json:"codeLength,omitempty"`
	Hints       []string    `json:"hints,omitempty"`
	Solved      bool        `json:"solved"`
	Digits      []DigitView `json:"digits,omitempty"`
}

// BoxView is a box as shown to the player.
type BoxView struct {
	ID     int    `json:"id"`
	Opened bool   `json:"opened"`
	Number *int   `json:"number,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

// DigitView is one slot of the final code; Digit is set once revealed.
type DigitView struct {
	Position int  `json:"position"`
	Digit    *int `json:"digit,omitempty"`
}

// NewView projects def for display. st may be nil, in which case the room
// is shown in its initial state.
func NewView(def Definition, st State) View {
	v := View{
		ID:          def.ID,
		Kind:        def.Kind,
		Title:       def.Title,
		Description: def.Description,
		Achievement: def.Achievement.Name,
		Buttons:     append([]Button(nil), def.Buttons...),
		Chemicals:   make([]Chemical, 0, len(def.Chemicals)),
		Countdown:   def.Countdown,
		Hints:       append([]string(nil), def.Hints...),
	}
	if st != nil {
		v.Solved = st.IsSolved()
	}

	for _, c := range def.Chemicals {
		// per-chemical hints give the answer away
		v.Chemicals = append(v.Chemicals, Chemical{ID: c.ID, Name: c.Name})
	}
	if len(v.Chemicals) == 0 {
		v.Chemicals = nil
	}

	switch def.Kind {
	case KindBoxCode:
		boxes, _ := st.(*BoxState)
		for _, b := range def.Boxes {
			bv := BoxView{ID: b.ID}
			if boxes != nil && boxes.IsOpen(b.ID) {
				n := b.Number
				bv.Opened = true
				bv.Number = &n
				bv.Hint = b.Hint
			}
			v.Boxes = append(v.Boxes, bv)
		}
	case KindTimedCode:
		v.CodeLength = len(def.CorrectCode)
		if timed, ok := st.(*TimedState); ok {
			v.Countdown = timed.Remaining
		}
	case KindFinalCode:
		v.CodeLength = len(def.CorrectDigits)
		final, _ := st.(*FinalState)
		for i := range def.CorrectDigits {
			dv := DigitView{Position: i}
			if final != nil {
				if d, ok := final.Revealed[i]; ok {
					dv.Digit = &d
				}
			}
			v.Digits = append(v.Digits, dv)
		}
	}
	return v
}
