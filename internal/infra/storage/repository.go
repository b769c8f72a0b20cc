// Package storage provides the persistence layer for the game server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// Keys of the three persisted namespaces.
const (
	KeySettings   = "escapeRoom_settings"
	KeyScoreboard = "escapeRoom_scoreboard"
	KeyProgress   = "escapeRoom_progress"
)

// Store is a string-keyed document store. Values are opaque JSON blobs.
// Get returns (nil, nil) when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// GameEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type GameEvent struct {
	ID        string                 `json:"id" db:"id"`
	SessionID string                 `json:"session_id" db:"session_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	RoomID    int                    `json:"room_id" db:"room_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for the session audit log.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event GameEvent) error

	// GetBySession retrieves all events of one play session (for replay).
	GetBySession(ctx context.Context, sessionID string) ([]GameEvent, error)

	// GetByEventType retrieves the events of one type within a session.
	GetByEventType(ctx context.Context, sessionID, eventType string) ([]GameEvent, error)

	// Sessions lists known session ids, most recent first.
	Sessions(ctx context.Context, limit int) ([]string, error)
}
