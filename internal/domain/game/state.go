// Package game defines the per-session game state and its persisted snapshot.
// This package is PURE and must NOT import any infrastructure packages.
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
)

// State is the session context threaded through the controller and engine.
type State struct {
	SessionID    string
	CurrentRoom  int
	StartTime    *time.Time
	Achievements []string
	Rooms        map[int]room.State
}

// NewState returns a fresh session positioned at the first room.
func NewState(catalog *room.Catalog) *State {
	s := &State{
		SessionID:    uuid.NewString(),
		CurrentRoom:  1,
		Achievements: make([]string, 0),
		Rooms:        make(map[int]room.State, catalog.Len()),
	}
	for _, id := range catalog.IDs() {
		def, _ := catalog.Get(id)
		s.Rooms[id] = room.NewState(def)
	}
	return s
}

// Room returns the working state for id.
func (s *State) Room(id int) (room.State, error) {
	st, ok := s.Rooms[id]
	if !ok || st == nil {
		return nil, fmt.Errorf("room %d: %w", id, room.ErrUnknownRoom)
	}
	return st, nil
}

// HasAchievement reports whether name is already unlocked.
func (s *State) HasAchievement(name string) bool {
	for _, a := range s.Achievements {
		if a == name {
			return true
		}
	}
	return false
}

// Unlock adds an achievement. It returns false when it was already held.
func (s *State) Unlock(name string) bool {
	if name == "" || s.HasAchievement(name) {
		return false
	}
	s.Achievements = append(s.Achievements, name)
	return true
}

// SolvedCount returns how many rooms are solved.
func (s *State) SolvedCount() int {
	n := 0
	for _, st := range s.Rooms {
		if st != nil && st.IsSolved() {
			n++
		}
	}
	return n
}

// ProgressPercent is the share of solved rooms, 0-100.
func (s *State) ProgressPercent() float64 {
	if len(s.Rooms) == 0 {
		return 0
	}
	return float64(s.SolvedCount()) / float64(len(s.Rooms)) * 100
}

// Elapsed returns whole seconds since the start time, floored.
func (s *State) Elapsed(now time.Time) int {
	if s.StartTime == nil {
		return 0
	}
	d := now.Sub(*s.StartTime)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
