package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/game"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/score"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/settings"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

func openTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "escape.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	got, err := s.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("Expected (nil, nil) for a missing key, got (%q, %v)", got, err)
	}

	if err := s.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err = s.Get(ctx, "k")
	if err != nil || string(got) != `{"a":2}` {
		t.Fatalf("Expected overwritten value, got (%q, %v)", got, err)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got, _ := s.Get(ctx, "k"); got != nil {
		t.Errorf("Expected key removed, got %q", got)
	}
}

func TestManagerDefaults(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), logger.Discard())

	if got := m.LoadSettings(ctx); got != settings.Defaults() {
		t.Errorf("Expected default settings, got %+v", got)
	}
	if got := m.Scoreboard(ctx); len(got) != 0 {
		t.Errorf("Expected empty scoreboard, got %v", got)
	}
	if got := m.LoadProgress(ctx); got != nil {
		t.Errorf("Expected no progress, got %+v", got)
	}
}

func TestManagerScoreboardKeepsTopTen(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), logger.Discard())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 11; i++ {
		if !m.SaveScore(ctx, score.NewEntry(100+i*10, 5, now)) {
			t.Fatalf("SaveScore %d failed", i)
		}
	}
	m.SaveScore(ctx, score.NewEntry(95, 5, now))

	board := m.Scoreboard(ctx)
	if len(board) != score.MaxEntries {
		t.Fatalf("Expected %d entries, got %d", score.MaxEntries, len(board))
	}
	if board[0].Time != 95 {
		t.Errorf("Expected fastest 95 first, got %d", board[0].Time)
	}
	if board[len(board)-1].Time != 180 {
		t.Errorf("Expected slowest retained 180, got %d", board[len(board)-1].Time)
	}

	if !m.ClearScoreboard(ctx) || len(m.Scoreboard(ctx)) != 0 {
		t.Errorf("Expected scoreboard cleared")
	}
}

func TestManagerCorruptValueFallsBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, KeySettings, []byte("{not json"))
	store.Set(ctx, KeyProgress, []byte("[]"))

	m := NewManager(store, logger.Discard())
	if got := m.LoadSettings(ctx); got != settings.Defaults() {
		t.Errorf("Corrupt settings should yield defaults, got %+v", got)
	}
	if got := m.LoadProgress(ctx); got != nil {
		t.Errorf("Corrupt progress should be treated as absent")
	}
}

func TestManagerFailingStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, logger.Discard())

	if !m.IsAvailable(ctx) {
		t.Fatalf("Expected store available")
	}
	store.SetFailing(true)

	if m.IsAvailable(ctx) {
		t.Errorf("Expected store unavailable")
	}
	if m.SaveProgress(ctx, game.Snapshot{CurrentRoom: 2}) {
		t.Errorf("Expected SaveProgress to report failure")
	}
	if _, err := m.UpdateSetting(ctx, "volume", "0.4"); err == nil {
		t.Errorf("Expected UpdateSetting to surface the failure")
	}
}

// unreadableStore fails every read while writes still succeed.
type unreadableStore struct {
	*MemoryStore
}

func (unreadableStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrStoreUnavailable
}

func TestSaveScoreKeepsBoardOnReadFailure(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	healthy := NewManager(mem, logger.Discard())
	for _, secs := range []int{90, 120, 150} {
		healthy.SaveScore(ctx, score.NewEntry(secs, 5, now))
	}

	flaky := NewManager(unreadableStore{mem}, logger.Discard())
	if flaky.SaveScore(ctx, score.NewEntry(60, 5, now)) {
		t.Errorf("SaveScore should report failure when the board cannot be read")
	}

	board := healthy.Scoreboard(ctx)
	if len(board) != 3 || board[0].Time != 90 {
		t.Errorf("Stored board must be untouched, got %+v", board)
	}
}

func TestSaveScoreReplacesCorruptBoard(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, KeyScoreboard, []byte("{not json"))

	m := NewManager(store, logger.Discard())
	if !m.SaveScore(ctx, score.NewEntry(75, 5, time.Now())) {
		t.Fatalf("SaveScore should overwrite a corrupt board")
	}
	if board := m.Scoreboard(ctx); len(board) != 1 || board[0].Time != 75 {
		t.Errorf("Expected one entry, got %+v", board)
	}
}

func TestManagerProgressSQLite(t *testing.T) {
	ctx := context.Background()
	m := NewManager(openTestDB(t), logger.Discard())

	start := int64(1_700_000_000_000)
	snap := game.Snapshot{
		CurrentRoom:  3,
		StartTime:    &start,
		Achievements: []string{"First Escape", "Power Master"},
		RoomsSolved:  []int{1, 2},
		Rooms: map[int]game.RoomSnapshot{
			3: {SelectedChemicals: []string{"A"}},
		},
	}
	if !m.SaveProgress(ctx, snap) {
		t.Fatalf("SaveProgress failed")
	}

	got := m.LoadProgress(ctx)
	if got == nil || got.CurrentRoom != 3 || *got.StartTime != start {
		t.Fatalf("Unexpected progress %+v", got)
	}
	if len(got.Rooms[3].SelectedChemicals) != 1 {
		t.Errorf("Room detail lost: %+v", got.Rooms[3])
	}

	if !m.ClearProgress(ctx) || m.LoadProgress(ctx) != nil {
		t.Errorf("Expected progress cleared")
	}
}

func TestUpdateSetting(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), logger.Discard())

	got, err := m.UpdateSetting(ctx, "graphicsQuality", "low")
	if err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if got.GraphicsQuality != settings.QualityLow {
		t.Errorf("Expected low quality, got %q", got.GraphicsQuality)
	}
	if m.LoadSettings(ctx).GraphicsQuality != settings.QualityLow {
		t.Errorf("Setting was not persisted")
	}
}

func TestEventRepositoriesAndRecap(t *testing.T) {
	ctx := context.Background()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	defer db.Close()

	repos := map[string]EventRepository{
		"sqlite": NewSQLiteEventRepository(db),
		"memory": NewMemoryEventRepository(),
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	evs := []GameEvent{
		{ID: "e1", SessionID: "s1", Timestamp: base, EventType: EventRoomLoaded, RoomID: 1, Payload: map[string]interface{}{}},
		{ID: "e2", SessionID: "s1", Timestamp: base, EventType: EventRoomTransition, RoomID: 1, Payload: map[string]interface{}{"transition": "FAILED", "detail": "wrong"}},
		{ID: "e3", SessionID: "s2", Timestamp: base, EventType: EventRoomLoaded, RoomID: 1, Payload: map[string]interface{}{}},
		{ID: "e4", SessionID: "s1", Timestamp: base.Add(time.Second), EventType: EventRoomTransition, RoomID: 1, Payload: map[string]interface{}{"transition": "SOLVED"}},
		{ID: "e5", SessionID: "s1", Timestamp: base.Add(time.Second), EventType: EventAchievementUnlocked, RoomID: 1, Payload: map[string]interface{}{"name": "First Escape"}},
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			for _, e := range evs {
				if err := repo.Append(ctx, e); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			got, err := repo.GetBySession(ctx, "s1")
			if err != nil {
				t.Fatalf("GetBySession: %v", err)
			}
			if len(got) != 4 || got[0].ID != "e1" || got[1].ID != "e2" {
				t.Fatalf("Expected 4 ordered events for s1, got %+v", got)
			}

			transitions, _ := repo.GetByEventType(ctx, "s1", EventRoomTransition)
			if len(transitions) != 2 {
				t.Errorf("Expected 2 transitions, got %d", len(transitions))
			}

			sessions, _ := repo.Sessions(ctx, 10)
			if len(sessions) != 2 || sessions[0] != "s1" {
				t.Errorf("Expected [s1 s2], got %v", sessions)
			}

			recap, err := NewReconstructor(repo).Rebuild(ctx, "s1")
			if err != nil || recap == nil {
				t.Fatalf("Rebuild: %v", err)
			}
			if len(recap.RoomsSolved) != 1 || recap.Failures[1] != 1 {
				t.Errorf("Unexpected recap %+v", recap)
			}
			if len(recap.Achievements) != 1 || recap.Achievements[0] != "First Escape" {
				t.Errorf("Unexpected achievements %v", recap.Achievements)
			}
			if recap.Events[1].Impact != "NEGATIVE" {
				t.Errorf("Expected failure to be NEGATIVE, got %s", recap.Events[1].Impact)
			}

			missing, err := NewReconstructor(repo).Rebuild(ctx, "nope")
			if err != nil || missing != nil {
				t.Errorf("Expected (nil, nil) for an unknown session")
			}
		})
	}
}
