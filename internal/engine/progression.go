package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/game"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/room"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/domain/score"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/quote"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/storage"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/metrics"
)

// Phase is the lifecycle stage of a session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInRoom
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NOT_STARTED"
	case PhaseInRoom:
		return "IN_ROOM"
	case PhaseCompleted:
		return "COMPLETED"
	default:
		return fmt.Sprintf("PHASE(%d)", int(p))
	}
}

// MarshalText keeps phases readable on the wire.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// QuoteSource hands out the quote shown after completion. It never fails.
type QuoteSource interface {
	Quote(ctx context.Context, useCache bool) quote.Quote
}

// Options tunes a Controller.
type Options struct {
	// TickRate is the countdown period of the timed room.
	TickRate time.Duration
	// ManualTicks disables the countdown goroutine; time only moves through Tick.
	ManualTicks bool
	// QuoteTimeout bounds the completion quote lookup.
	QuoteTimeout time.Duration
	// Clock replaces time.Now.
	Clock func() time.Time
}

// Status is a read-only summary of the session for newly connected clients.
type Status struct {
	SessionID    string     `json:"sessionId"`
	Phase        Phase      `json:"phase"`
	CurrentRoom  int        `json:"currentRoom"`
	Elapsed      int        `json:"elapsed"`
	Progress     float64    `json:"progress"`
	Achievements []string   `json:"achievements"`
	Room         *room.View `json:"room,omitempty"`
}

// Controller drives one play session: room sequencing, persistence,
// scoring and the countdown. All methods are safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	catalog   *room.Catalog
	rooms     *RoomEngine
	store     *storage.Manager
	presenter Presenter
	quotes    QuoteSource
	logger    *logger.Logger
	opts      Options
	now       func() time.Time

	state *game.State
	phase Phase

	countdown   *Ticker
	quoteCancel context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a controller in the NotStarted phase.
// quotes may be nil, in which case no quote is delivered.
func NewController(rooms *RoomEngine, store *storage.Manager, presenter Presenter, quotes QuoteSource, log *logger.Logger, opts Options) *Controller {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	if opts.TickRate <= 0 {
		opts.TickRate = TickRate
	}
	if opts.QuoteTimeout <= 0 {
		opts.QuoteTimeout = 5 * time.Second
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		catalog:   rooms.Catalog(),
		rooms:     rooms,
		store:     store,
		presenter: presenter,
		quotes:    quotes,
		logger:    log,
		opts:      opts,
		now:       now,
		state:     game.NewState(rooms.Catalog()),
		phase:     PhaseNotStarted,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Close stops the countdown and the quote task and waits for them.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopCountdownLocked()
	c.cancelQuoteLocked()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Phase returns the current lifecycle stage.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Snapshot returns the persistable projection of the session.
func (c *Controller) Snapshot() game.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return game.Project(c.state)
}

// Status summarises the session.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		SessionID:    c.state.SessionID,
		Phase:        c.phase,
		CurrentRoom:  c.state.CurrentRoom,
		Elapsed:      c.state.Elapsed(c.now()),
		Progress:     c.state.ProgressPercent(),
		Achievements: append([]string{}, c.state.Achievements...),
	}
	if c.phase == PhaseInRoom {
		if def, err := c.catalog.Get(c.state.CurrentRoom); err == nil {
			rs, _ := c.state.Room(def.ID)
			v := room.NewView(def, rs)
			st.Room = &v
		}
	}
	return st
}

// StartNewGame resets the session to room 1 with the clock started now.
func (c *Controller) StartNewGame(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCountdownLocked()
	c.cancelQuoteLocked()

	c.state = game.NewState(c.catalog)
	start := c.now()
	c.state.StartTime = &start
	c.phase = PhaseInRoom
	c.store.ClearProgress(ctx)

	if obs, ok := c.presenter.(SessionObserver); ok {
		obs.OnSessionStarted(c.state.SessionID)
	}
	metrics.Get().RecordGameStarted()
	c.logger.Event("GAME_STARTED", c.state.SessionID, "New escape attempt")

	return c.loadRoomLocked(ctx, c.catalog.IDs()[0])
}

// Restart abandons the session and returns to NotStarted.
func (c *Controller) Restart(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCountdownLocked()
	c.cancelQuoteLocked()
	c.state = game.NewState(c.catalog)
	c.phase = PhaseNotStarted
	c.store.ClearProgress(ctx)
	c.logger.Event("GAME_RESTARTED", c.state.SessionID, "Progress cleared")
}

// LoadRoom enters room n. Every earlier room must be solved and n cannot
// be behind the current room.
func (c *Controller) LoadRoom(ctx context.Context, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInRoomLocked(); err != nil {
		return err
	}
	if _, err := c.catalog.Get(n); err != nil {
		return err
	}
	if n < c.state.CurrentRoom {
		return fmt.Errorf("room %d is behind room %d: %w", n, c.state.CurrentRoom, ErrRoomLocked)
	}
	for _, id := range c.catalog.IDs() {
		if id >= n {
			break
		}
		if st, err := c.state.Room(id); err != nil || !st.IsSolved() {
			return fmt.Errorf("room %d needs room %d solved: %w", n, id, ErrRoomLocked)
		}
	}
	return c.loadRoomLocked(ctx, n)
}

// Submit applies a player input to the current room.
func (c *Controller) Submit(ctx context.Context, in room.Input) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInRoomLocked(); err != nil {
		return Outcome{}, err
	}
	id := c.state.CurrentRoom
	st, err := c.state.Room(id)
	if err != nil {
		c.logger.Error("Submit on missing room state: " + err.Error())
		return Outcome{}, err
	}

	out, err := c.rooms.Submit(id, st, in)
	if err != nil {
		c.logger.Error("Room engine rejected state: " + err.Error())
		return Outcome{}, err
	}
	if !out.Changed() {
		return out, nil
	}

	c.reportLocked(out)
	c.persistLocked(ctx)

	if out.Transition == room.Solved {
		if err := c.handleRoomSolvedLocked(ctx, id); err != nil {
			return out, err
		}
	}
	return out, nil
}

// HandleRoomSolved marks room n solved, unlocks its achievement and, for
// the last room, finalises the game. Only the current room can be solved.
func (c *Controller) HandleRoomSolved(ctx context.Context, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInRoomLocked(); err != nil {
		return err
	}
	if n != c.state.CurrentRoom {
		return fmt.Errorf("room %d: %w", n, ErrNotCurrentRoom)
	}
	return c.handleRoomSolvedLocked(ctx, n)
}

// Advance moves to the next room once the current one is solved. From the
// last room it finalises the game.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInRoomLocked(); err != nil {
		return err
	}
	id := c.state.CurrentRoom
	st, err := c.state.Room(id)
	if err != nil {
		return err
	}
	if !st.IsSolved() {
		return fmt.Errorf("room %d: %w", id, ErrRoomLocked)
	}
	if id >= c.catalog.LastRoom() {
		return c.finalizeLocked(ctx)
	}
	return c.loadRoomLocked(ctx, id+1)
}

// FinalizeGame records the run on the scoreboard and completes the session.
func (c *Controller) FinalizeGame(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireInRoomLocked(); err != nil {
		return err
	}
	return c.finalizeLocked(ctx)
}

// RestoreFromSnapshot replaces the session with one rebuilt from snap.
// Room ids unknown to the catalog are ignored. The phase is left unchanged.
func (c *Controller) RestoreFromSnapshot(snap game.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restoreLocked(snap)
}

// OpenDeepLink handles a navigation token such as "room3" or "#room3".
// The saved progress is resumed only when its current room matches the
// token; otherwise the link is ignored and false is returned.
func (c *Controller) OpenDeepLink(ctx context.Context, token string) (bool, error) {
	n, ok := ParseDeepLink(token)
	if !ok {
		c.logger.Infof("Ignoring deep link %q", token)
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.store.LoadProgress(ctx)
	if snap == nil || snap.CurrentRoom != n {
		c.logger.Infof("Deep link to room %d does not match saved progress", n)
		return false, nil
	}

	c.stopCountdownLocked()
	c.cancelQuoteLocked()
	c.restoreLocked(*snap)
	c.phase = PhaseInRoom
	if obs, ok := c.presenter.(SessionObserver); ok {
		obs.OnSessionStarted(c.state.SessionID)
	}
	c.logger.Event("GAME_RESUMED", c.state.SessionID, "Resumed at room "+strconv.Itoa(n))

	if err := c.loadRoomLocked(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// ParseDeepLink extracts the room number from "room<N>" or "#room<N>".
func ParseDeepLink(token string) (int, bool) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "#")
	if !strings.HasPrefix(token, "room") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(token, "room"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Tick advances the countdown of the current room by one step.
func (c *Controller) Tick(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickLocked(ctx)
}

// onCountdown is the callback of the countdown goroutine. Ticks from a
// ticker that is no longer the active one are dropped.
func (c *Controller) onCountdown(src *Ticker) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if src != c.countdown || src.Stopped() {
		return
	}
	if _, err := c.tickLocked(c.ctx); err != nil {
		c.logger.Error("Countdown tick failed: " + err.Error())
	}
}

func (c *Controller) tickLocked(ctx context.Context) (Outcome, error) {
	if err := c.requireInRoomLocked(); err != nil {
		return Outcome{}, err
	}
	id := c.state.CurrentRoom
	st, err := c.state.Room(id)
	if err != nil {
		return Outcome{}, err
	}

	out, err := c.rooms.Tick(id, st)
	if err != nil {
		return Outcome{}, err
	}
	if !out.Changed() {
		return out, nil
	}
	metrics.Get().RecordTick()

	// plain decrements only redraw; failures and resets are reported and saved
	if out.Transition == room.Progressed {
		c.pushStateLocked(id)
		return out, nil
	}
	c.reportLocked(out)
	c.persistLocked(ctx)
	return out, nil
}

func (c *Controller) loadRoomLocked(ctx context.Context, n int) error {
	def, err := c.catalog.Get(n)
	if err != nil {
		c.logger.Error("Load of unknown room: " + err.Error())
		return err
	}
	st, err := c.state.Room(n)
	if err != nil {
		return err
	}

	c.stopCountdownLocked()
	c.state.CurrentRoom = n
	c.presenter.OnRoomLoaded(def, st.Clone())
	c.persistLocked(ctx)

	if def.Kind == room.KindTimedCode && !st.IsSolved() {
		c.armCountdownLocked()
	}
	c.logger.Event("ROOM_LOADED", c.state.SessionID, def.Title)
	return nil
}

func (c *Controller) handleRoomSolvedLocked(ctx context.Context, n int) error {
	def, err := c.catalog.Get(n)
	if err != nil {
		return err
	}
	st, err := c.state.Room(n)
	if err != nil {
		return err
	}

	st.MarkSolved()
	if n == c.state.CurrentRoom {
		c.stopCountdownLocked()
	}
	if def.HasAchievement() && c.state.Unlock(def.Achievement.Name) {
		c.presenter.OnAchievementUnlocked(def.Achievement.Name)
		c.logger.Event("ACHIEVEMENT_UNLOCKED", c.state.SessionID, def.Achievement.Name)
	}
	c.persistLocked(ctx)

	if n == c.catalog.LastRoom() {
		return c.finalizeLocked(ctx)
	}
	return nil
}

func (c *Controller) finalizeLocked(ctx context.Context) error {
	now := c.now()
	elapsed := c.state.Elapsed(now)

	c.stopCountdownLocked()
	if c.state.Unlock(room.CompletionAchievement.Name) {
		c.presenter.OnAchievementUnlocked(room.CompletionAchievement.Name)
	}

	entry := score.NewEntry(elapsed, c.state.SolvedCount(), now)
	if !c.store.SaveScore(ctx, entry) {
		c.logger.Warn("Score could not be saved; run kept in memory only")
	}
	c.store.ClearProgress(ctx)
	c.phase = PhaseCompleted

	metrics.Get().RecordGameCompleted()
	c.logger.Event("GAME_COMPLETED", c.state.SessionID, "Escaped in "+score.FormatTime(elapsed))
	c.presenter.OnGameCompleted(elapsed, append([]string(nil), c.state.Achievements...))

	c.startQuoteLocked()
	return nil
}

func (c *Controller) restoreLocked(snap game.Snapshot) {
	c.stopCountdownLocked()
	c.state = game.NewState(c.catalog)
	game.Restore(c.state, snap, c.catalog)
}

// startQuoteLocked fetches the completion quote in the background. The
// result is dropped unless the same session is still completed.
func (c *Controller) startQuoteLocked() {
	receiver, ok := c.presenter.(QuoteReceiver)
	if c.quotes == nil || !ok {
		return
	}
	c.cancelQuoteLocked()

	ctx, cancel := context.WithTimeout(c.ctx, c.opts.QuoteTimeout)
	c.quoteCancel = cancel
	session := c.state.SessionID

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		q := c.quotes.Quote(ctx, true)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.ctx.Err() != nil || c.phase != PhaseCompleted || c.state.SessionID != session {
			return
		}
		receiver.OnQuote(q)
	}()
}

func (c *Controller) cancelQuoteLocked() {
	if c.quoteCancel != nil {
		c.quoteCancel()
		c.quoteCancel = nil
	}
}

func (c *Controller) armCountdownLocked() {
	if c.opts.ManualTicks {
		return
	}
	t := NewTicker(c.opts.TickRate, c.onCountdown, c.logger)
	c.countdown = t

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		t.Start(c.ctx)
	}()
}

func (c *Controller) stopCountdownLocked() {
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
}

func (c *Controller) reportLocked(out Outcome) {
	c.presenter.OnTransition(out.RoomID, out.Transition, out.Detail)
	metrics.Get().RecordTransition(out.Transition.String())
	if out.Then != room.Unchanged {
		c.presenter.OnTransition(out.RoomID, out.Then, "")
		metrics.Get().RecordTransition(out.Then.String())
	}
	c.pushStateLocked(out.RoomID)
}

func (c *Controller) pushStateLocked(id int) {
	recv, ok := c.presenter.(StateReceiver)
	if !ok {
		return
	}
	def, err := c.catalog.Get(id)
	if err != nil {
		return
	}
	if st, err := c.state.Room(id); err == nil {
		recv.OnRoomState(def, st.Clone())
	}
}

func (c *Controller) persistLocked(ctx context.Context) {
	if c.phase != PhaseInRoom {
		return
	}
	c.store.SaveProgress(ctx, game.Project(c.state))
}

func (c *Controller) requireInRoomLocked() error {
	switch c.phase {
	case PhaseInRoom:
		return nil
	case PhaseCompleted:
		return ErrGameCompleted
	default:
		return ErrNotInRoom
	}
}
