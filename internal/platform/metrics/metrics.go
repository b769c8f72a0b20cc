// Package metrics provides observability for the game server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers gameplay and infrastructure counters.
type Collector struct {
	// Gameplay
	GamesStarted   int64
	GamesCompleted int64
	RoomsSolved    int64
	Failures       int64
	Resets         int64
	CountdownTicks int64

	// Persistence
	StoreWrites      int64
	StoreWriteLatSum int64 // nanoseconds
	StoreWriteLatMax int64
	StoreErrors      int64

	// WebSocket
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// Quotes
	QuoteRequests  int64
	QuoteCacheHits int64
	QuoteFallbacks int64

	// System
	StartTime      time.Time
	LastCompletion time.Time
	mu             sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordGameStarted counts a new session.
func (c *Collector) RecordGameStarted() {
	atomic.AddInt64(&c.GamesStarted, 1)
}

// RecordGameCompleted counts a finished run.
func (c *Collector) RecordGameCompleted() {
	atomic.AddInt64(&c.GamesCompleted, 1)

	c.mu.Lock()
	c.LastCompletion = time.Now()
	c.mu.Unlock()
}

// RecordTransition counts the interesting room transitions.
func (c *Collector) RecordTransition(name string) {
	switch name {
	case "SOLVED":
		atomic.AddInt64(&c.RoomsSolved, 1)
	case "FAILED":
		atomic.AddInt64(&c.Failures, 1)
	case "RESET":
		atomic.AddInt64(&c.Resets, 1)
	}
}

// RecordTick counts a countdown tick.
func (c *Collector) RecordTick() {
	atomic.AddInt64(&c.CountdownTicks, 1)
}

// RecordStoreWrite records a write to the persistence store.
func (c *Collector) RecordStoreWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.StoreWrites, 1)
	atomic.AddInt64(&c.StoreWriteLatSum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.StoreWriteLatMax) {
		atomic.StoreInt64(&c.StoreWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.StoreErrors, 1)
	}
}

// RecordStoreError records a failed read or decode.
func (c *Collector) RecordStoreError() {
	atomic.AddInt64(&c.StoreErrors, 1)
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordQuote records a quote lookup and how it was served.
func (c *Collector) RecordQuote(cacheHit, fallback bool) {
	atomic.AddInt64(&c.QuoteRequests, 1)
	if cacheHit {
		atomic.AddInt64(&c.QuoteCacheHits, 1)
	}
	if fallback {
		atomic.AddInt64(&c.QuoteFallbacks, 1)
	}
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	writes := atomic.LoadInt64(&c.StoreWrites)
	var writeAvg float64
	if writes > 0 {
		writeAvg = float64(atomic.LoadInt64(&c.StoreWriteLatSum)) / float64(writes) / 1e6 // ms
	}

	lastCompletion := ""
	if !c.LastCompletion.IsZero() {
		lastCompletion = c.LastCompletion.Format(time.RFC3339)
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"game": map[string]interface{}{
			"started":         atomic.LoadInt64(&c.GamesStarted),
			"completed":       atomic.LoadInt64(&c.GamesCompleted),
			"rooms_solved":    atomic.LoadInt64(&c.RoomsSolved),
			"failures":        atomic.LoadInt64(&c.Failures),
			"resets":          atomic.LoadInt64(&c.Resets),
			"countdown_ticks": atomic.LoadInt64(&c.CountdownTicks),
			"last_completion": lastCompletion,
		},

		"store": map[string]interface{}{
			"writes":           writes,
			"avg_write_lat_ms": writeAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.StoreWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.StoreErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"quote": map[string]interface{}{
			"requests":   atomic.LoadInt64(&c.QuoteRequests),
			"cache_hits": atomic.LoadInt64(&c.QuoteCacheHits),
			"fallbacks":  atomic.LoadInt64(&c.QuoteFallbacks),
		},
	}
}

// Handler returns an HTTP handler for the /api/metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP escape_games_completed_total Completed runs\n")
		fmt.Fprintf(w, "# TYPE escape_games_completed_total counter\n")
		fmt.Fprintf(w, "escape_games_completed_total %d\n\n", atomic.LoadInt64(&c.GamesCompleted))

		fmt.Fprintf(w, "# HELP escape_room_transitions_total Room transitions by outcome\n")
		fmt.Fprintf(w, "# TYPE escape_room_transitions_total counter\n")
		fmt.Fprintf(w, "escape_room_transitions_total{transition=\"solved\"} %d\n", atomic.LoadInt64(&c.RoomsSolved))
		fmt.Fprintf(w, "escape_room_transitions_total{transition=\"failed\"} %d\n", atomic.LoadInt64(&c.Failures))
		fmt.Fprintf(w, "escape_room_transitions_total{transition=\"reset\"} %d\n\n", atomic.LoadInt64(&c.Resets))

		fmt.Fprintf(w, "# HELP escape_store_errors_total Persistence failures\n")
		fmt.Fprintf(w, "# TYPE escape_store_errors_total counter\n")
		fmt.Fprintf(w, "escape_store_errors_total %d\n\n", atomic.LoadInt64(&c.StoreErrors))

		fmt.Fprintf(w, "# HELP escape_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE escape_ws_connections gauge\n")
		fmt.Fprintf(w, "escape_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP escape_quote_fallbacks_total Quotes served from the fallback\n")
		fmt.Fprintf(w, "# TYPE escape_quote_fallbacks_total counter\n")
		fmt.Fprintf(w, "escape_quote_fallbacks_total %d\n", atomic.LoadInt64(&c.QuoteFallbacks))
	}
}
