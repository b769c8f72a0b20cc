// Package network - replay.go
// Session replay endpoints: the live session from the in-memory log and
// past sessions rebuilt from the persisted audit log.
package network

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/events"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/storage"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

const defaultSessionLimit = 20

// ReplayHandler provides the replay API.
type ReplayHandler struct {
	eventLog      *events.EventLog
	eventRepo     storage.EventRepository
	reconstructor *storage.Reconstructor
	recorder      *events.Recorder
	logger        *logger.Logger
}

// NewReplayHandler creates a new replay handler. eventRepo may be nil when
// nothing is persisted; only the live session is served then.
func NewReplayHandler(el *events.EventLog, repo storage.EventRepository, rec *events.Recorder, log *logger.Logger) *ReplayHandler {
	h := &ReplayHandler{
		eventLog:  el,
		eventRepo: repo,
		recorder:  rec,
		logger:    log,
	}
	if repo != nil {
		h.reconstructor = storage.NewReconstructor(repo)
	}
	return h
}

// ReplayResponse wraps a recap with its generation time.
type ReplayResponse struct {
	GeneratedAt string                `json:"generated_at"`
	FilteredBy  string                `json:"filtered_by,omitempty"`
	Recap       *storage.SessionRecap `json:"recap"`
}

// RegisterRoutes sets up the replay API routes.
func (rh *ReplayHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/session/events", rh.HandleLiveSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions", rh.HandleSessions).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/events", rh.HandleSession).Methods(http.MethodGet)
}

// HandleLiveSession folds the current session's in-memory events.
// GET /api/session/events?type=ROOM_TRANSITION
func (rh *ReplayHandler) HandleLiveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := rh.recorder.SessionID()
	if sessionID == "" {
		jsonError(w, "No session in progress", http.StatusNotFound)
		return
	}
	eventType := r.URL.Query().Get("type")

	var stored []storage.GameEvent
	for _, e := range rh.eventLog.GetBySession(sessionID) {
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		se, err := events.ToStorage(e)
		if err != nil {
			rh.logger.Warn("Skipping unserializable event " + e.ID + ": " + err.Error())
			continue
		}
		stored = append(stored, se)
	}

	resp := ReplayResponse{
		GeneratedAt: time.Now().Format(time.RFC3339),
		FilteredBy:  eventType,
		Recap:       storage.Fold(sessionID, stored),
	}
	rh.logger.Event("SESSION_REPLAY", "API", "Session:"+sessionID+" Events:"+strconv.Itoa(len(stored)))
	jsonSuccess(w, resp)
}

// HandleSessions lists persisted session ids, most recent first.
// GET /api/sessions?limit=N
func (rh *ReplayHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if rh.eventRepo == nil {
		jsonError(w, "Session history is not persisted", http.StatusNotFound)
		return
	}
	limit := defaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ids, err := rh.eventRepo.Sessions(ctx, limit)
	if err != nil {
		rh.logger.Error("Failed to list sessions: " + err.Error())
		jsonError(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	jsonSuccess(w, map[string]interface{}{"sessions": ids})
}

// HandleSession rebuilds one persisted session.
// GET /api/sessions/{id}/events
func (rh *ReplayHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	if rh.reconstructor == nil {
		jsonError(w, "Session history is not persisted", http.StatusNotFound)
		return
	}
	sessionID := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recap, err := rh.reconstructor.Rebuild(ctx, sessionID)
	if err != nil {
		rh.logger.Error("Failed to rebuild session " + sessionID + ": " + err.Error())
		jsonError(w, "Failed to rebuild session", http.StatusInternalServerError)
		return
	}
	if recap == nil {
		jsonError(w, "Session not found", http.StatusNotFound)
		return
	}
	jsonSuccess(w, ReplayResponse{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Recap:       recap,
	})
}
