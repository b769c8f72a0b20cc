package network

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/engine"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Upper bound for one action, including persistence.
	actionTimeout = 5 * time.Second
)

// Action types accepted from the frontend.
const (
	ActionStart    = "START"
	ActionRestart  = "RESTART"
	ActionAdvance  = "ADVANCE"
	ActionLoadRoom = "LOAD_ROOM"
	ActionOpenLink = "OPEN_LINK"
	ActionInput    = "INPUT"
	ActionStatus   = "STATUS"
)

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type   string `json:"type"`             // START, INPUT, ADVANCE, ...
	Action string `json:"action,omitempty"` // room action for INPUT, e.g. "open_box"
	Value  string `json:"value,omitempty"`  // box id, code, room number or link token
}

// ErrorPayload is sent back to the client whose action was refused.
type ErrorPayload struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

// Client holds one WebSocket connection.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	lastActionTime time.Time
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.opts.ClientBuffer),
	}
}

// Register adds the client to the hub. It returns false once the hub stopped.
func (c *Client) Register() bool {
	return c.hub.add(c)
}

// ReadPump pumps messages from the websocket connection to the game.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.reply(Message{Type: MsgTypeStatus, Payload: c.hub.game.Status()})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket read failed: " + err.Error())
				metrics.Get().RecordWSError()
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Error("Failed to parse PlayerAction from WebSocket. err: " + err.Error())
			c.replyError("", errors.New("malformed action"))
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	if interval := c.hub.opts.ActionInterval; interval > 0 && time.Since(c.lastActionTime) < interval {
		c.hub.logger.Warn("Rate limit exceeded for client action " + action.Type)
		c.replyError(action.Type, errors.New("too many actions"))
		return
	}
	c.lastActionTime = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	game := c.hub.game
	var err error

	switch strings.ToUpper(action.Type) {
	case ActionStart:
		err = game.StartNewGame(ctx)
	case ActionRestart:
		game.Restart(ctx)
	case ActionAdvance:
		err = game.Advance(ctx)
	case ActionLoadRoom:
		var n int
		if n, err = strconv.Atoi(strings.TrimSpace(action.Value)); err == nil {
			err = game.LoadRoom(ctx, n)
		}
	case ActionOpenLink:
		var resumed bool
		if resumed, err = game.OpenDeepLink(ctx, action.Value); err == nil && !resumed {
			c.hub.logger.Info("Deep link ignored: " + action.Value)
		}
	case ActionInput:
		var out engine.Outcome
		out, err = game.Submit(ctx, room.Input{Action: room.Action(action.Action), Value: action.Value})
		if err == nil {
			c.reply(Message{Type: MsgTypeOutcome, Payload: out})
		}
	case ActionStatus:
	default:
		c.hub.logger.Warn("Unknown PlayerAction type: " + action.Type)
		err = errors.New("unknown action type")
	}

	if err != nil {
		c.replyError(action.Type, err)
		return
	}
	c.reply(Message{Type: MsgTypeStatus, Payload: game.Status()})
}

func (c *Client) replyError(action string, err error) {
	c.reply(Message{Type: MsgTypeError, Payload: ErrorPayload{Action: action, Error: err.Error()}})
}

// reply sends msg to this client only. The hub lock guards against a send
// on a channel the hub already closed.
func (c *Client) reply(msg Message) {
	data, err := encode(msg)
	if err != nil {
		c.hub.logger.Errorf("Failed to serialize %s reply: %v", msg.Type, err)
		return
	}

	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
		metrics.Get().RecordWSMessage(false)
	default:
		metrics.Get().RecordWSError()
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// one frame per message; clients parse each frame as JSON
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				metrics.Get().RecordWSError()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
