// Package engine contains the puzzle rules and the progression loop of the
// escape game.
//
// ARCHITECTURAL RULE: RoomEngine only evaluates input against a room and
// reports a Transition. The Controller owns the session: it persists,
// notifies the Presenter and decides when to advance.
package engine
