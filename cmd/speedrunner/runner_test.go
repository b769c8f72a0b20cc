package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/engine"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/events"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/storage"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/network"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

func TestPlanSolvesEveryRoom(t *testing.T) {
	catalog := room.DefaultCatalog()
	e := engine.NewRoomEngine(catalog, logger.Discard())

	for _, id := range catalog.IDs() {
		def, _ := catalog.Get(id)
		st := room.NewState(def)

		var last engine.Outcome
		for _, a := range Plan(def) {
			out, err := e.Submit(id, st, room.Input{Action: room.Action(a.Action), Value: a.Value})
			if err != nil {
				t.Fatalf("room %d: %v", id, err)
			}
			last = out
		}
		if last.Transition != room.Solved {
			t.Errorf("Room %d: plan ended with %s", id, last.Transition)
		}
	}
}

func TestRunAgainstServer(t *testing.T) {
	log := logger.Discard()
	catalog := room.DefaultCatalog()
	manager := storage.NewManager(storage.NewMemoryStore(), log)
	recorder := events.NewRecorder(events.NewEventLog(nil), log)

	ctrl := engine.NewController(engine.NewRoomEngine(catalog, log), manager, recorder, nil, log, engine.Options{ManualTicks: true})
	defer ctrl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := network.NewHub(ctrl, network.HubOptions{}, log)
	go hub.Run(ctx)

	srv := httptest.NewServer(network.NewAPI(hub, manager, catalog, nil, log).Router())
	defer srv.Close()

	runner := &Runner{
		URL:      "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		Catalog:  catalog,
		Interval: time.Millisecond,
		Timeout:  2 * time.Second,
	}
	res, err := runner.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// start, 3 boxes, 4 buttons, 3 chemicals + mix, 1 code, 1 final code, 4 advances
	if res.Actions != 18 {
		t.Errorf("Expected 18 actions, got %d", res.Actions)
	}
	if res.Rejected != 0 {
		t.Errorf("Expected no rejected actions, got %d", res.Rejected)
	}
	if board := manager.Scoreboard(ctx); len(board) != 1 {
		t.Errorf("Expected the run on the scoreboard, got %v", board)
	}
}

func TestSummarize(t *testing.T) {
	s := summarize([]RunResult{
		{Actions: 18, GameSeconds: 40, Wall: time.Second, Latencies: []time.Duration{2 * time.Millisecond, 4 * time.Millisecond}},
		{Actions: 18, GameSeconds: 35, Wall: time.Second, Latencies: []time.Duration{6 * time.Millisecond}},
	}, 1)

	if s.Completed != 2 || s.Failed != 1 || s.Actions != 36 {
		t.Errorf("Unexpected counts %+v", s)
	}
	if s.BestGame != 35 {
		t.Errorf("Expected best 35, got %d", s.BestGame)
	}
	if s.MinLatency != "2ms" || s.AvgLatency != "4ms" || s.MaxLatency != "6ms" {
		t.Errorf("Unexpected latencies %s %s %s", s.MinLatency, s.AvgLatency, s.MaxLatency)
	}
	if s.ActionsRate != 18 {
		t.Errorf("Expected 18 actions/sec, got %v", s.ActionsRate)
	}
}
