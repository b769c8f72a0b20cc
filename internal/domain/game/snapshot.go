package game

import (
	"sort"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
)

// Snapshot is the persisted projection of a session, written after every
// state-changing action so a reload can resume where the player left off.
type Snapshot struct {
	SessionID    string               `json:"sessionId,omitempty"`
	CurrentRoom  int                  `json:"currentRoom"`
	StartTime    *int64               `json:"startTime"` // unix milliseconds
	Achievements []string             `json:"achievements"`
	RoomsSolved  []int                `json:"roomsSolved"`
	Rooms        map[int]RoomSnapshot `json:"rooms"`
}

// RoomSnapshot flattens every room kind; only the fields of the room's
// own kind are written.
type RoomSnapshot struct {
	Solved            bool         `json:"solved"`
	OpenedBoxes       []int        `json:"openedBoxes,omitempty"`
	Sequence          []int        `json:"sequence,omitempty"`
	SelectedChemicals []string     `json:"selectedChemicals,omitempty"`
	Countdown         *int         `json:"countdown,omitempty"`
	Code              string       `json:"code,omitempty"`
	FoundDigits       []FoundDigit `json:"foundDigits,omitempty"`
}

// FoundDigit is one revealed position of the final code.
type FoundDigit struct {
	Position int `json:"position"`
	Digit    int `json:"digit"`
}

// Project captures the current session as a Snapshot.
func Project(s *State) Snapshot {
	snap := Snapshot{
		SessionID:    s.SessionID,
		CurrentRoom:  s.CurrentRoom,
		Achievements: append([]string{}, s.Achievements...),
		RoomsSolved:  make([]int, 0, len(s.Rooms)),
		Rooms:        make(map[int]RoomSnapshot, len(s.Rooms)),
	}
	if s.StartTime != nil {
		ms := s.StartTime.UnixMilli()
		snap.StartTime = &ms
	}

	ids := make([]int, 0, len(s.Rooms))
	for id := range s.Rooms {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		st := s.Rooms[id]
		if st == nil {
			continue
		}
		rs := RoomSnapshot{Solved: st.IsSolved()}
		switch v := st.(type) {
		case *room.BoxState:
			rs.OpenedBoxes = append([]int(nil), v.Opened...)
		case *room.SequenceState:
			rs.Sequence = append([]int(nil), v.Pressed...)
		case *room.ChemicalState:
			rs.SelectedChemicals = append([]string(nil), v.Selected...)
		case *room.TimedState:
			remaining := v.Remaining
			rs.Countdown = &remaining
			rs.Code = v.Code
		case *room.FinalState:
			for _, pos := range v.Positions() {
				rs.FoundDigits = append(rs.FoundDigits, FoundDigit{Position: pos, Digit: v.Revealed[pos]})
			}
		}
		if rs.Solved {
			snap.RoomsSolved = append(snap.RoomsSolved, id)
		}
		snap.Rooms[id] = rs
	}
	return snap
}

// Restore merges a snapshot into s. Room ids unknown to the catalog are
// skipped and fields missing from the snapshot keep their defaults.
func Restore(s *State, snap Snapshot, catalog *room.Catalog) {
	if snap.SessionID != "" {
		s.SessionID = snap.SessionID
	}
	if _, err := catalog.Get(snap.CurrentRoom); err == nil {
		s.CurrentRoom = snap.CurrentRoom
	}
	if snap.StartTime != nil {
		t := time.UnixMilli(*snap.StartTime)
		s.StartTime = &t
	}
	for _, name := range snap.Achievements {
		s.Unlock(name)
	}

	for id, rs := range snap.Rooms {
		def, err := catalog.Get(id)
		if err != nil {
			continue
		}
		st := room.NewState(def)
		if rs.Solved {
			st.MarkSolved()
		}
		switch v := st.(type) {
		case *room.BoxState:
			for _, box := range rs.OpenedBoxes {
				if _, ok := def.Box(box); ok && !v.IsOpen(box) {
					v.Opened = append(v.Opened, box)
				}
			}
		case *room.SequenceState:
			for _, btn := range rs.Sequence {
				if def.HasButton(btn) && !v.Contains(btn) {
					v.Pressed = append(v.Pressed, btn)
				}
			}
		case *room.ChemicalState:
			for _, chem := range rs.SelectedChemicals {
				if def.HasChemical(chem) && v.IndexOf(chem) < 0 && len(v.Selected) < len(def.CorrectCombination) {
					v.Selected = append(v.Selected, chem)
				}
			}
		case *room.TimedState:
			v.Code = rs.Code
			switch {
			case v.Solved:
				v.Remaining = 0
			case rs.Countdown != nil && *rs.Countdown > 0 && *rs.Countdown <= def.Countdown:
				v.Remaining = *rs.Countdown
			}
		case *room.FinalState:
			for _, fd := range rs.FoundDigits {
				if fd.Position >= 0 && fd.Position < len(def.CorrectDigits) {
					v.Revealed[fd.Position] = fd.Digit
				}
			}
		}
		s.Rooms[id] = st
	}
}
