package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
)

func TestNewState(t *testing.T) {
	s := NewState(room.DefaultCatalog())

	if s.CurrentRoom != 1 {
		t.Errorf("Expected current room 1, got %d", s.CurrentRoom)
	}
	if s.StartTime != nil {
		t.Errorf("Expected nil start time")
	}
	if len(s.Rooms) != 5 {
		t.Errorf("Expected 5 room states, got %d", len(s.Rooms))
	}
	if s.SessionID == "" {
		t.Errorf("Expected a session id")
	}
}

func TestUnlockIsIdempotent(t *testing.T) {
	s := NewState(room.DefaultCatalog())

	if !s.Unlock("Chemist") {
		t.Fatalf("First unlock should succeed")
	}
	if s.Unlock("Chemist") {
		t.Errorf("Second unlock should be a no-op")
	}
	s.Unlock("First Escape")

	want := []string{"Chemist", "First Escape"}
	if len(s.Achievements) != len(want) {
		t.Fatalf("Expected %v, got %v", want, s.Achievements)
	}
	for i := range want {
		if s.Achievements[i] != want[i] {
			t.Errorf("Expected insertion order %v, got %v", want, s.Achievements)
		}
	}
}

func TestElapsedFloors(t *testing.T) {
	s := NewState(room.DefaultCatalog())
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s.StartTime = &start

	if got := s.Elapsed(start.Add(90*time.Second + 999*time.Millisecond)); got != 90 {
		t.Errorf("Expected 90, got %d", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	catalog := room.DefaultCatalog()
	s := NewState(catalog)
	start := time.UnixMilli(1_700_000_000_000)
	s.StartTime = &start
	s.CurrentRoom = 5
	s.Unlock("First Escape")

	s.Rooms[1].(*room.BoxState).Opened = []int{2, 1, 3}
	s.Rooms[1].MarkSolved()
	s.Rooms[2].(*room.SequenceState).Pressed = []int{1, 4}
	s.Rooms[3].(*room.ChemicalState).Selected = []string{"C", "A"}
	s.Rooms[4].(*room.TimedState).Remaining = 33
	s.Rooms[5].(*room.FinalState).Revealed[0] = 7

	data, err := json.Marshal(Project(s))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := NewState(catalog)
	Restore(restored, snap, catalog)

	if restored.CurrentRoom != 5 {
		t.Errorf("Expected current room 5, got %d", restored.CurrentRoom)
	}
	if restored.StartTime == nil || !restored.StartTime.Equal(start) {
		t.Errorf("Expected start time %v, got %v", start, restored.StartTime)
	}
	if !restored.HasAchievement("First Escape") {
		t.Errorf("Achievement lost on restore")
	}
	if !restored.Rooms[1].IsSolved() {
		t.Errorf("Room 1 should be solved")
	}
	if got := restored.Rooms[2].(*room.SequenceState).Pressed; len(got) != 2 || got[1] != 4 {
		t.Errorf("Unexpected sequence %v", got)
	}
	if got := restored.Rooms[3].(*room.ChemicalState).Selected; len(got) != 2 {
		t.Errorf("Unexpected chemicals %v", got)
	}
	if got := restored.Rooms[4].(*room.TimedState).Remaining; got != 33 {
		t.Errorf("Expected countdown 33, got %d", got)
	}
	if got := restored.Rooms[5].(*room.FinalState).Revealed[0]; got != 7 {
		t.Errorf("Expected revealed digit 7, got %d", got)
	}
	if len(snap.RoomsSolved) != 1 || snap.RoomsSolved[0] != 1 {
		t.Errorf("Unexpected roomsSolved %v", snap.RoomsSolved)
	}
}

func TestRestoreIgnoresUnknownRooms(t *testing.T) {
	catalog := room.DefaultCatalog()
	s := NewState(catalog)

	Restore(s, Snapshot{
		CurrentRoom: 9,
		Rooms: map[int]RoomSnapshot{
			7: {Solved: true},
			2: {Sequence: []int{1, 1, 8}},
		},
	}, catalog)

	if s.CurrentRoom != 1 {
		t.Errorf("Out-of-range current room should be ignored, got %d", s.CurrentRoom)
	}
	if _, ok := s.Rooms[7]; ok {
		t.Errorf("Unknown room 7 should not be merged")
	}
	if got := s.Rooms[2].(*room.SequenceState).Pressed; len(got) != 1 || got[0] != 1 {
		t.Errorf("Expected deduplicated known buttons [1], got %v", got)
	}
	if got := s.Rooms[4].(*room.TimedState).Remaining; got != 60 {
		t.Errorf("Unspecified room should keep defaults, countdown %d", got)
	}
}
