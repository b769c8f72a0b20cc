// Package network - api.go
// REST endpoints for the scoreboard, settings, saved progress and room
// catalog, plus the WebSocket upgrade.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/score"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/storage"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/metrics"
)

const requestTimeout = 5 * time.Second

// API serves the HTTP side of the game.
type API struct {
	hub     *Hub
	store   *storage.Manager
	catalog *room.Catalog
	replay  *ReplayHandler
	logger  *logger.Logger
	now     func() time.Time
}

// NewAPI creates the HTTP API. replay may be nil.
func NewAPI(hub *Hub, store *storage.Manager, catalog *room.Catalog, replay *ReplayHandler, log *logger.Logger) *API {
	return &API{
		hub:     hub,
		store:   store,
		catalog: catalog,
		replay:  replay,
		logger:  log,
		now:     time.Now,
	}
}

// ScoreboardRow is one rendered scoreboard line.
type ScoreboardRow struct {
	Rank      int    `json:"rank"`
	Label     string `json:"label"`
	Time      int    `json:"time"`
	Formatted string `json:"formatted"`
	Date      string `json:"date"`
	Ago       string `json:"ago"`
	Rooms     int    `json:"rooms"`
}

// ScoreboardResponse is the GET /api/scoreboard body.
type ScoreboardResponse struct {
	Entries []ScoreboardRow `json:"entries"`
	Best    string          `json:"best,omitempty"`
	Average string          `json:"average,omitempty"`
}

// SettingUpdate is the PUT /api/settings body.
type SettingUpdate struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Router builds the route table.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", a.ServeWs)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", a.HandleRooms).Methods(http.MethodGet)
	api.HandleFunc("/session", a.HandleSession).Methods(http.MethodGet)
	api.HandleFunc("/scoreboard", a.HandleScoreboard).Methods(http.MethodGet)
	api.HandleFunc("/scoreboard", a.HandleClearScoreboard).Methods(http.MethodDelete)
	api.HandleFunc("/settings", a.HandleSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", a.HandleUpdateSetting).Methods(http.MethodPut)
	api.HandleFunc("/progress", a.HandleProgress).Methods(http.MethodGet)
	api.HandleFunc("/progress", a.HandleClearProgress).Methods(http.MethodDelete)
	api.HandleFunc("/health", a.HandleHealth).Methods(http.MethodGet)
	api.HandleFunc("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/metrics", metrics.PrometheusHandler()).Methods(http.MethodGet)

	if a.replay != nil {
		a.replay.RegisterRoutes(api)
	}
	return r
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the browser client may be served from another origin in development
	},
}

// ServeWs handles websocket requests from the peer.
func (a *API) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("Failed to upgrade websocket connection: " + err.Error())
		metrics.Get().RecordWSError()
		return
	}

	client := NewClient(a.hub, conn)
	if !client.Register() {
		conn.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}

// HandleRooms lists the rooms without their solutions.
// GET /api/rooms
func (a *API) HandleRooms(w http.ResponseWriter, r *http.Request) {
	views := make([]room.View, 0, a.catalog.Len())
	for _, id := range a.catalog.IDs() {
		def, err := a.catalog.Get(id)
		if err != nil {
			continue
		}
		views = append(views, room.NewView(def, nil))
	}
	jsonSuccess(w, views)
}

// HandleSession returns the live session status.
// GET /api/session
func (a *API) HandleSession(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, a.hub.game.Status())
}

// HandleScoreboard returns the top runs, fastest first.
// GET /api/scoreboard
func (a *API) HandleScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	board := a.store.Scoreboard(ctx)
	now := a.now()

	resp := ScoreboardResponse{Entries: make([]ScoreboardRow, 0, len(board))}
	for i, e := range board {
		resp.Entries = append(resp.Entries, ScoreboardRow{
			Rank:      i + 1,
			Label:     score.RankLabel(i + 1),
			Time:      e.Time,
			Formatted: score.FormatTime(e.Time),
			Date:      e.Date,
			Ago:       humanize.RelTime(e.CreatedAt(), now, "ago", "from now"),
			Rooms:     e.Rooms,
		})
	}
	if best, ok := score.Best(board); ok {
		resp.Best = score.FormatTime(best.Time)
	}
	if avg, ok := score.Average(board); ok {
		resp.Average = score.FormatTime(avg)
	}
	jsonSuccess(w, resp)
}

// HandleClearScoreboard wipes the scoreboard.
// DELETE /api/scoreboard
func (a *API) HandleClearScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if !a.store.ClearScoreboard(ctx) {
		jsonError(w, "Scoreboard could not be cleared", http.StatusServiceUnavailable)
		return
	}
	a.logger.Event("SCOREBOARD_CLEARED", "API", "All entries removed")
	jsonSuccess(w, map[string]interface{}{"success": true})
}

// HandleSettings returns the stored settings or the defaults.
// GET /api/settings
func (a *API) HandleSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	jsonSuccess(w, a.store.LoadSettings(ctx))
}

// HandleUpdateSetting changes one setting by key.
// PUT /api/settings {"key": "volume", "value": "0.4"}
func (a *API) HandleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req SettingUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	updated, err := a.store.UpdateSetting(ctx, req.Key, req.Value)
	switch {
	case errors.Is(err, storage.ErrStoreUnavailable):
		// applied in memory only
		w.Header().Set("X-Persisted", "false")
	case err != nil:
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonSuccess(w, updated)
}

// HandleProgress returns the saved snapshot, or 404 when there is none.
// GET /api/progress
func (a *API) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap := a.store.LoadProgress(ctx)
	if snap == nil {
		jsonError(w, "No saved progress", http.StatusNotFound)
		return
	}
	jsonSuccess(w, snap)
}

// HandleClearProgress removes the saved snapshot.
// DELETE /api/progress
func (a *API) HandleClearProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if !a.store.ClearProgress(ctx) {
		jsonError(w, "Progress could not be cleared", http.StatusServiceUnavailable)
		return
	}
	jsonSuccess(w, map[string]interface{}{"success": true})
}

// HandleHealth reports store availability and connected clients.
// GET /api/health
func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	jsonSuccess(w, map[string]interface{}{
		"storage": a.store.IsAvailable(ctx),
		"clients": a.hub.ClientCount(),
	})
}

// jsonError sends an error response.
func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
