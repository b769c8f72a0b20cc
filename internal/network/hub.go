// Package network serves the game to browser clients over WebSocket and
// exposes the scoreboard, settings and replay over HTTP.
package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/engine"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/events"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/metrics"
)

// MessageType tags every frame sent to a client.
type MessageType string

const (
	MsgTypeEvent   MessageType = "EVENT"
	MsgTypeStatus  MessageType = "STATUS"
	MsgTypeOutcome MessageType = "OUTCOME"
	MsgTypeError   MessageType = "ERROR"
)

// Message is the envelope of every server to client frame.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Game is the part of the controller the transport drives.
type Game interface {
	StartNewGame(ctx context.Context) error
	Restart(ctx context.Context)
	LoadRoom(ctx context.Context, n int) error
	Advance(ctx context.Context) error
	Submit(ctx context.Context, in room.Input) (engine.Outcome, error)
	OpenDeepLink(ctx context.Context, token string) (bool, error)
	Status() engine.Status
}

// HubOptions sizes the hub's queues.
type HubOptions struct {
	BroadcastBuffer int
	ClientBuffer    int
	ActionInterval  time.Duration
	PollInterval    time.Duration
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	game       Game
	clients    map[*Client]bool
	broadcast  chan []byte
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	opts       HubOptions
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub driving game.
func NewHub(game Game, opts HubOptions, log *logger.Logger) *Hub {
	if opts.BroadcastBuffer <= 0 {
		opts.BroadcastBuffer = 256
	}
	if opts.ClientBuffer <= 0 {
		opts.ClientBuffer = 64
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 200 * time.Millisecond
	}
	return &Hub{
		game:       game,
		broadcast:  make(chan []byte, opts.BroadcastBuffer),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		opts:       opts,
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					// slow consumer
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
					metrics.Get().RecordWSError()
				}
			}
			h.mu.Unlock()
		}
	}
}

// add registers client synchronously so replies can be sent right away.
func (h *Hub) add(client *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	metrics.Get().RecordWSConnection(1)
	h.logger.Info("New WebSocket client connected")
	return true
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends msg to every connected client.
func (h *Hub) Broadcast(msg Message) {
	data, err := encode(msg)
	if err != nil {
		h.logger.Errorf("Failed to serialize %s message for WebSocket broadcast: %v", msg.Type, err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// BroadcastEvent wraps a GameEvent in an EVENT message and sends it to all clients.
func (h *Hub) BroadcastEvent(event events.GameEvent) {
	h.Broadcast(Message{
		Type:      MsgTypeEvent,
		Timestamp: event.Timestamp.UnixMilli(),
		Payload:   event,
	})
}

// StartEventPoller spawns a goroutine that follows the EventLog and pushes
// new events to the Hub. Events already in the log at start are skipped.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog) {
	go func() {
		pollInterval := time.NewTicker(h.opts.PollInterval)
		defer pollInterval.Stop()

		cursor := eventLog.Cursor()

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				var newEvents []events.GameEvent
				newEvents, cursor = eventLog.Since(cursor)
				for _, event := range newEvents {
					h.BroadcastEvent(event)
				}
			}
		}
	}()
}

func encode(msg Message) ([]byte, error) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	return json.Marshal(msg)
}
