package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/game"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/score"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/settings"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/metrics"
)

const probeKey = "__escapeRoom_probe__"

// Manager gives typed access to the three persisted namespaces.
// Writes never fail loudly: errors are logged, counted and reported as false,
// and the caller keeps its in-memory state.
type Manager struct {
	store  Store
	logger *logger.Logger
}

// NewManager wraps a Store.
func NewManager(store Store, log *logger.Logger) *Manager {
	return &Manager{store: store, logger: log}
}

// IsAvailable probes the store with a write and a removal.
func (m *Manager) IsAvailable(ctx context.Context) bool {
	if err := m.store.Ping(ctx); err != nil {
		return false
	}
	if err := m.store.Set(ctx, probeKey, []byte(probeKey)); err != nil {
		return false
	}
	return m.store.Remove(ctx, probeKey) == nil
}

// LoadSettings returns the stored settings or the defaults.
func (m *Manager) LoadSettings(ctx context.Context) settings.Settings {
	s := settings.Defaults()
	if !m.load(ctx, KeySettings, &s) {
		return settings.Defaults()
	}
	return s.Normalize()
}

// SaveSettings persists s.
func (m *Manager) SaveSettings(ctx context.Context, s settings.Settings) bool {
	return m.save(ctx, KeySettings, s.Normalize())
}

// UpdateSetting changes a single setting by key and persists the result.
func (m *Manager) UpdateSetting(ctx context.Context, key, value string) (settings.Settings, error) {
	next, err := m.LoadSettings(ctx).Apply(key, value)
	if err != nil {
		return settings.Settings{}, err
	}
	if !m.SaveSettings(ctx, next) {
		return next, fmt.Errorf("setting %s: %w", key, ErrStoreUnavailable)
	}
	return next, nil
}

// Scoreboard returns the stored entries, fastest first.
func (m *Manager) Scoreboard(ctx context.Context) []score.Entry {
	var board []score.Entry
	if !m.load(ctx, KeyScoreboard, &board) {
		return []score.Entry{}
	}
	score.Sort(board)
	if len(board) > score.MaxEntries {
		board = board[:score.MaxEntries]
	}
	return board
}

// SaveScore inserts e into the scoreboard. Nothing is written when the
// current board cannot be read, so a read failure never truncates it.
func (m *Manager) SaveScore(ctx context.Context, e score.Entry) bool {
	var board []score.Entry
	if _, err := m.read(ctx, KeyScoreboard, &board); err != nil {
		m.logger.Warn("Scoreboard unreadable; run not recorded")
		return false
	}
	return m.save(ctx, KeyScoreboard, score.Insert(board, e))
}

// ClearScoreboard removes every entry.
func (m *Manager) ClearScoreboard(ctx context.Context) bool {
	return m.remove(ctx, KeyScoreboard)
}

// SaveProgress writes the session snapshot.
func (m *Manager) SaveProgress(ctx context.Context, snap game.Snapshot) bool {
	return m.save(ctx, KeyProgress, snap)
}

// LoadProgress returns the saved snapshot, or nil when there is none.
func (m *Manager) LoadProgress(ctx context.Context) *game.Snapshot {
	var snap game.Snapshot
	if !m.load(ctx, KeyProgress, &snap) {
		return nil
	}
	return &snap
}

// ClearProgress drops the saved snapshot.
func (m *Manager) ClearProgress(ctx context.Context) bool {
	return m.remove(ctx, KeyProgress)
}

// load decodes key into dst. It returns false when the key is absent,
// unreadable or corrupt.
func (m *Manager) load(ctx context.Context, key string, dst interface{}) bool {
	found, _ := m.read(ctx, key, dst)
	return found
}

// read is load that also returns the store error. Corrupt data is reported
// as absent without an error so the next write can replace it.
func (m *Manager) read(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Errorf("Error loading %s: %v", key, err)
		metrics.Get().RecordStoreError()
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		m.logger.Errorf("Error decoding %s: %v", key, err)
		metrics.Get().RecordStoreError()
		return false, nil
	}
	return true, nil
}

func (m *Manager) save(ctx context.Context, key string, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		m.logger.Errorf("Error encoding %s: %v", key, err)
		metrics.Get().RecordStoreError()
		return false
	}

	start := time.Now()
	err = m.store.Set(ctx, key, data)
	metrics.Get().RecordStoreWrite(time.Since(start), err)
	if err != nil {
		m.logger.Errorf("Error saving %s: %v", key, err)
		return false
	}
	return true
}

func (m *Manager) remove(ctx context.Context, key string) bool {
	if err := m.store.Remove(ctx, key); err != nil {
		m.logger.Errorf("Error removing %s: %v", key, err)
		metrics.Get().RecordStoreError()
		return false
	}
	return true
}
