package engine

import (
	"context"
	"sync"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
)

// TickRate defines how often the timed room counts down.
const TickRate = 1 * time.Second

// Ticker is the cancellable heartbeat of one timed room visit.
// It does NOT know about rooms - it only calls onTick with itself, so the
// owner can discard ticks from a ticker it has already replaced.
type Ticker struct {
	rate     time.Duration
	onTick   func(*Ticker)
	logger   *logger.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTicker creates a ticker firing every rate.
func NewTicker(rate time.Duration, onTick func(*Ticker), log *logger.Logger) *Ticker {
	if rate <= 0 {
		rate = TickRate
	}
	return &Ticker{
		rate:     rate,
		onTick:   onTick,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Start runs the loop until ctx is done or Stop is called. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopChan:
			return
		case <-ticker.C:
			// a stop racing with the tick wins
			select {
			case <-t.stopChan:
				return
			default:
			}
			t.onTick(t)
		}
	}
}

// Stop ends the loop. It never blocks and may be called more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
	})
}

// Stopped reports whether Stop has been called.
func (t *Ticker) Stopped() bool {
	select {
	case <-t.stopChan:
		return true
	default:
		return false
	}
}
