package root

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/game"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/score"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/storage"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/config"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--db", filepath.Join(dir, "escape.db"),
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func seed(t *testing.T, dir string, fn func(m *storage.Manager)) {
	t.Helper()
	db, err := storage.InitSQLite(filepath.Join(dir, "escape.db"))
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	defer db.Close()
	fn(storage.NewManager(storage.NewSQLiteStore(db), logger.Discard()))
}

func TestScoresCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "scores", "list")
	if err != nil {
		t.Fatalf("scores list: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Errorf("Unexpected empty listing %q", out)
	}

	now := time.Now()
	seed(t, dir, func(m *storage.Manager) {
		for _, secs := range []int{300, 125} {
			m.SaveScore(context.Background(), score.NewEntry(secs, 5, now))
		}
	})

	out, err = run(t, dir, "scores", "ls")
	if err != nil {
		t.Fatalf("scores ls: %v", err)
	}
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[0], "02:05") || !strings.Contains(lines[0], "1st") {
		t.Errorf("Fastest run should lead, got %q", lines[0])
	}
	if !strings.Contains(out, "Best 02:05") || !strings.Contains(out, "2 runs") {
		t.Errorf("Missing summary in %q", out)
	}

	if _, err := run(t, dir, "scores", "clear"); err != nil {
		t.Fatalf("scores clear: %v", err)
	}
	out, _ = run(t, dir, "scores", "list")
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Errorf("Scoreboard should be empty after clear, got %q", out)
	}
}

func TestSettingsCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "settings", "show")
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	if !strings.Contains(out, "volume           70%") {
		t.Errorf("Expected default volume, got %q", out)
	}

	if _, err := run(t, dir, "settings", "set", "volume", "40%"); err != nil {
		t.Fatalf("settings set: %v", err)
	}
	out, _ = run(t, dir, "settings", "show")
	if !strings.Contains(out, "volume           40%") {
		t.Errorf("Volume change not persisted: %q", out)
	}

	if _, err := run(t, dir, "settings", "set", "brightness", "1"); err == nil {
		t.Error("Unknown key should fail")
	}
	if _, err := run(t, dir, "settings", "set", "volume"); err == nil {
		t.Error("Missing value should fail")
	}
}

func TestProgressCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "progress", "show")
	if err != nil {
		t.Fatalf("progress show: %v", err)
	}
	if !strings.Contains(out, "No saved progress.") {
		t.Errorf("Unexpected output %q", out)
	}

	seed(t, dir, func(m *storage.Manager) {
		m.SaveProgress(context.Background(), game.Snapshot{
			SessionID:    "s-1",
			CurrentRoom:  3,
			Achievements: []string{"First Escape", "Sequence Master"},
			RoomsSolved:  []int{1, 2},
		})
	})

	out, err = run(t, dir, "progress", "show")
	if err != nil {
		t.Fatalf("progress show: %v", err)
	}
	if !strings.Contains(out, `"currentRoom": 3`) {
		t.Errorf("Expected room 3 in snapshot, got %q", out)
	}

	if _, err := run(t, dir, "progress", "clear"); err != nil {
		t.Fatalf("progress clear: %v", err)
	}
	out, _ = run(t, dir, "progress", "show")
	if !strings.Contains(out, "No saved progress.") {
		t.Errorf("Progress should be cleared, got %q", out)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := config.LowResourceConfig()
	cfg.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, logger.Discard()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not stop")
	}
}
