package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kprao/rummyscore/internal/dependencies/clock"
	"github.com/kprao/rummyscore/internal/dependencies/random"
	"github.com/kprao/rummyscore/internal/localstore"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/services/roster"
	"github.com/kprao/rummyscore/internal/services/settlement"
	"github.com/kprao/rummyscore/internal/syncgw"
)

// State is the controller's lifecycle state
type State string

const (
	// StateNoGame means no game is active on this device
	StateNoGame State = "no_game"
	// StateEditing means the device holds the PIN and may mutate scores
	StateEditing State = "editing"
	// StateViewing means the device follows the game read-only
	StateViewing State = "viewing"
	// StatePendingPIN means a join is awaiting PIN verification
	StatePendingPIN State = "pending_pin_verification"
)

const (
	gameIDLength   = 9
	gameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pinLength      = 4
	pinAlphabet    = "0123456789"
)

// GenerateGameID draws a fresh game identifier
func GenerateGameID(r random.Random) model.GameID {
	return model.GameID(r.String(gameIDLength, gameIDAlphabet))
}

// GeneratePIN draws a fresh edit PIN. "0000" is reserved as a
// never-issued value, so it is redrawn.
func GeneratePIN(r random.Random) model.PIN {
	for {
		pin := model.PIN(r.String(pinLength, pinAlphabet))
		if pin != "0000" {
			return pin
		}
	}
}

// ValidPINFormat reports whether the PIN is exactly four digits
func ValidPINFormat(pin model.PIN) bool {
	if len(pin) != pinLength {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Controller manages the device's one active game: its lifecycle state,
// the local snapshot, and sync with the shared backend. The gateway may
// be nil, in which case games are purely local.
type Controller struct {
	store   localstore.Store
	gateway syncgw.Gateway
	roster  *roster.Service
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu          sync.Mutex
	state       State
	gameID      model.GameID
	pin         model.PIN
	snapshot    *model.Snapshot
	unsubscribe syncgw.Unsubscribe
	lastApplied time.Time

	pushCh chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewController creates a SessionController and starts its push worker
func NewController(
	store localstore.Store,
	gateway syncgw.Gateway,
	rosterService *roster.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	c := &Controller{
		store:   store,
		gateway: gateway,
		roster:  rosterService,
		clock:   clock,
		random:  random,
		logger:  logger,
		state:   StateNoGame,
		pushCh:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.pushWorker()
	return c
}

// Shutdown stops the push worker. The controller is unusable afterwards.
func (c *Controller) Shutdown() {
	close(c.done)
	c.wg.Wait()
}

// NewGame starts a fresh game with this device as editor
func (c *Controller) NewGame(ctx context.Context) (*model.Snapshot, error) {
	gameID := GenerateGameID(c.random)
	pin := GeneratePIN(c.random)
	snap := model.NewSnapshot()

	c.mu.Lock()
	c.teardownLocked()
	c.state = StateEditing
	c.gameID = gameID
	c.pin = pin
	c.snapshot = snap
	c.lastApplied = time.Time{}
	c.mu.Unlock()

	if err := c.persistLocal(ctx); err != nil {
		return nil, err
	}

	// Remote registration is best-effort; the game works offline and
	// the next push retries the snapshot write.
	if c.gateway != nil {
		if err := c.gateway.CreateAuthRecord(ctx, &syncgw.AuthRecord{
			GameID:    gameID,
			PIN:       pin,
			CreatedAt: c.clock.Now(),
		}); err != nil {
			c.logger.Warn("failed to register game remotely",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		} else if err := c.gateway.WriteSnapshot(ctx, gameID, snap); err != nil {
			c.logger.Warn("failed to push initial snapshot",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		}
	}

	c.logger.Info("new game started",
		slog.String("game_id", string(gameID)),
	)

	return snap.Clone(), nil
}

// Resume restores the session persisted on this device, if any
func (c *Controller) Resume(ctx context.Context) (State, error) {
	session, err := c.store.LoadSession(ctx)
	if err != nil {
		return StateNoGame, err
	}
	snap, err := c.store.LoadSnapshot(ctx)
	if err != nil {
		return StateNoGame, err
	}

	state := StateViewing
	if session.Mode == model.ModeEdit {
		state = StateEditing
	}

	c.mu.Lock()
	c.teardownLocked()
	c.state = state
	c.gameID = session.GameID
	c.pin = session.PIN
	c.snapshot = snap
	c.lastApplied = time.Time{}
	c.mu.Unlock()

	// Only a viewing device follows the backend. An editor resumes from
	// its local snapshot; replacing it would drop unpushed edits.
	if c.gateway != nil && state == StateViewing {
		// Catch up on writes made while this device was away.
		if record, err := c.gateway.ReadSnapshot(ctx, session.GameID); err == nil {
			c.applyRemote(ctx, record)
		}
		c.subscribe(ctx, session.GameID)
	}

	c.logger.Info("session resumed",
		slog.String("game_id", string(session.GameID)),
		slog.String("state", string(state)),
	)

	return state, nil
}

// JoinView joins an existing game read-only
func (c *Controller) JoinView(ctx context.Context, gameID model.GameID) (*model.Snapshot, error) {
	gameID = model.NormalizeGameID(string(gameID))
	if c.gateway == nil {
		return nil, model.ErrGameNotFound
	}

	record, err := c.gateway.ReadSnapshot(ctx, gameID)
	if err != nil {
		if errors.Is(err, syncgw.ErrNotFound) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	c.adopt(gameID, "", StateViewing, record)

	if err := c.persistLocal(ctx); err != nil {
		return nil, err
	}
	c.subscribe(ctx, gameID)

	c.logger.Info("joined game as viewer",
		slog.String("game_id", string(gameID)),
	)

	return record.Snapshot.Clone(), nil
}

// JoinEdit joins an existing game with a PIN. A malformed PIN is
// rejected before any network traffic. A wrong PIN, a missing
// credential record, or a failed verification all downgrade to viewing;
// verification problems never grant edit rights.
func (c *Controller) JoinEdit(ctx context.Context, gameID model.GameID, pin model.PIN) (State, error) {
	gameID = model.NormalizeGameID(string(gameID))
	if !ValidPINFormat(pin) {
		return StateNoGame, model.ErrInvalidPIN
	}
	if c.gateway == nil {
		return StateNoGame, model.ErrGameNotFound
	}

	c.mu.Lock()
	prevState := c.state
	c.state = StatePendingPIN
	c.mu.Unlock()

	restore := func() {
		c.mu.Lock()
		c.state = prevState
		c.mu.Unlock()
	}

	// Fetch the snapshot first; an unreachable or absent game leaves
	// the previous session untouched.
	record, err := c.gateway.ReadSnapshot(ctx, gameID)
	if err != nil {
		restore()
		if errors.Is(err, syncgw.ErrNotFound) {
			return prevState, model.ErrGameNotFound
		}
		return prevState, err
	}

	state := StateViewing
	sessionPIN := model.PIN("")
	auth, err := c.gateway.ReadAuthRecord(ctx, gameID)
	switch {
	case err != nil:
		c.logger.Warn("pin verification unavailable, joining as viewer",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
	case auth.PIN != pin:
		c.logger.Info("pin mismatch, joining as viewer",
			slog.String("game_id", string(gameID)),
		)
	default:
		state = StateEditing
		sessionPIN = pin
	}

	c.adopt(gameID, sessionPIN, state, record)

	if err := c.persistLocal(ctx); err != nil {
		return state, err
	}
	if state == StateViewing {
		c.subscribe(ctx, gameID)
	}

	c.logger.Info("joined game",
		slog.String("game_id", string(gameID)),
		slog.String("state", string(state)),
	)

	return state, nil
}

// adopt replaces the active session with the given remote record
func (c *Controller) adopt(gameID model.GameID, pin model.PIN, state State, record *syncgw.DataRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	c.state = state
	c.gameID = gameID
	c.pin = pin
	c.snapshot = record.Snapshot.Clone()
	c.lastApplied = record.LastUpdated
}

// Close ends the active session. An editor's final state is pushed
// best-effort before local state is cleared.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	gameID := c.gameID
	var snap *model.Snapshot
	if c.snapshot != nil {
		snap = c.snapshot.Clone()
	}
	c.teardownLocked()
	c.state = StateNoGame
	c.gameID = ""
	c.pin = ""
	c.snapshot = nil
	c.lastApplied = time.Time{}
	c.mu.Unlock()

	if state == StateEditing && c.gateway != nil && snap != nil {
		if err := c.gateway.WriteSnapshot(ctx, gameID, snap); err != nil {
			c.logger.Warn("final push failed",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := c.store.ClearSnapshot(ctx); err != nil {
		return err
	}
	if err := c.store.ClearSession(ctx); err != nil {
		return err
	}

	if state != StateNoGame {
		c.logger.Info("session closed",
			slog.String("game_id", string(gameID)),
		)
	}
	return nil
}

// State returns the controller's current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// GameID returns the active game's ID, or "" when no game is active
func (c *Controller) GameID() model.GameID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// PIN returns the active game's edit PIN, or "" for viewers
func (c *Controller) PIN() model.PIN {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pin
}

// Snapshot returns a copy of the active snapshot
func (c *Controller) Snapshot() (*model.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil, model.ErrNoActiveGame
	}
	return c.snapshot.Clone(), nil
}

// Standings settles the active snapshot
func (c *Controller) Standings() (settlement.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return settlement.Result{}, model.ErrNoActiveGame
	}
	return settlement.Settle(c.snapshot.Players, c.snapshot.PointValue, c.snapshot.GSTPercent), nil
}

// SetScore records a round score for a player
func (c *Controller) SetScore(ctx context.Context, playerIndex, roundIndex, value int) error {
	return c.mutate(ctx, func(snap *model.Snapshot) error {
		return snap.SetScore(playerIndex, roundIndex, value)
	})
}

// RenamePlayer changes a player's name
func (c *Controller) RenamePlayer(ctx context.Context, playerIndex int, name string) error {
	return c.mutate(ctx, func(snap *model.Snapshot) error {
		return snap.Rename(playerIndex, name)
	})
}

// AddPlayer adds a player to the roster
func (c *Controller) AddPlayer(ctx context.Context, name string) error {
	return c.mutate(ctx, func(snap *model.Snapshot) error {
		return c.roster.AddPlayer(snap, name)
	})
}

// RemovePlayer removes the player at the given display position
func (c *Controller) RemovePlayer(ctx context.Context, displayIndex int) error {
	return c.mutate(ctx, func(snap *model.Snapshot) error {
		return c.roster.RemovePlayer(snap, displayIndex)
	})
}

// SetPointValue changes the game's monetary value per point
func (c *Controller) SetPointValue(ctx context.Context, value float64) error {
	return c.mutate(ctx, func(snap *model.Snapshot) error {
		if value <= 0 {
			return model.ErrMalformedSnapshot
		}
		snap.PointValue = value
		return nil
	})
}

// SetGSTPercent changes the winners' tax rate
func (c *Controller) SetGSTPercent(ctx context.Context, value float64) error {
	return c.mutate(ctx, func(snap *model.Snapshot) error {
		if value < 0 {
			return model.ErrMalformedSnapshot
		}
		snap.GSTPercent = value
		return nil
	})
}

// mutate applies fn to the snapshot if this device may edit, persists
// locally, and queues a coalesced remote push
func (c *Controller) mutate(ctx context.Context, fn func(*model.Snapshot) error) error {
	c.mu.Lock()
	switch c.state {
	case StateEditing:
	case StateNoGame:
		c.mu.Unlock()
		return model.ErrNoActiveGame
	default:
		c.mu.Unlock()
		return model.ErrViewOnly
	}

	if err := fn(c.snapshot); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	if err := c.persistLocal(ctx); err != nil {
		return err
	}
	c.signalPush()
	return nil
}

// Save pushes the current snapshot to the backend and waits for it
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateEditing {
		state := c.state
		c.mu.Unlock()
		if state == StateNoGame {
			return model.ErrNoActiveGame
		}
		return model.ErrViewOnly
	}
	gameID := c.gameID
	snap := c.snapshot.Clone()
	c.mu.Unlock()

	if c.gateway == nil {
		return nil
	}
	return c.gateway.WriteSnapshot(ctx, gameID, snap)
}

// Reload refetches the remote snapshot and applies it if newer. For an
// editing device this is a no-op; local edits are never replaced.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateNoGame {
		c.mu.Unlock()
		return model.ErrNoActiveGame
	}
	gameID := c.gameID
	c.mu.Unlock()

	if c.gateway == nil {
		return nil
	}
	record, err := c.gateway.ReadSnapshot(ctx, gameID)
	if err != nil {
		if errors.Is(err, syncgw.ErrNotFound) {
			return model.ErrGameNotFound
		}
		return err
	}
	c.applyRemote(ctx, record)
	return nil
}

// subscribe attaches the gateway subscription for the game. Only a
// viewing device holds one; every transition into editing goes through
// teardownLocked first.
func (c *Controller) subscribe(ctx context.Context, gameID model.GameID) {
	unsub, err := c.gateway.Subscribe(ctx, gameID,
		func(record *syncgw.DataRecord) {
			c.applyRemote(context.Background(), record)
		},
		func(err error) {
			c.logger.Warn("subscription error",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		},
	)
	if err != nil {
		c.logger.Warn("failed to subscribe to updates",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return
	}

	c.mu.Lock()
	c.unsubscribe = unsub
	c.mu.Unlock()
}

// applyRemote applies a remote record, discarding stale and duplicate
// deliveries by timestamp. Only a viewing device accepts remote state;
// in any other state the record is dropped so local edits survive.
func (c *Controller) applyRemote(ctx context.Context, record *syncgw.DataRecord) {
	c.mu.Lock()
	if c.state != StateViewing || record.Snapshot == nil {
		c.mu.Unlock()
		return
	}
	if !record.LastUpdated.After(c.lastApplied) {
		c.mu.Unlock()
		return
	}
	c.snapshot = record.Snapshot.Clone()
	c.lastApplied = record.LastUpdated
	c.mu.Unlock()

	if err := c.persistLocal(ctx); err != nil {
		c.logger.Warn("failed to persist remote update",
			slog.String("error", err.Error()),
		)
	}
}

// persistLocal writes the current snapshot and session to the device store
func (c *Controller) persistLocal(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	gameID := c.gameID
	pin := c.pin
	var snap *model.Snapshot
	if c.snapshot != nil {
		snap = c.snapshot.Clone()
	}
	c.mu.Unlock()

	if state == StateNoGame || snap == nil {
		return nil
	}

	if err := c.store.SaveSnapshot(ctx, snap); err != nil {
		return err
	}

	mode := model.ModeView
	if state == StateEditing {
		mode = model.ModeEdit
	}
	return c.store.SaveSession(ctx, localstore.Session{
		GameID: gameID,
		PIN:    pin,
		Mode:   mode,
	})
}

// teardownLocked drops the gateway subscription. Callers hold c.mu.
func (c *Controller) teardownLocked() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// signalPush queues a push without blocking; pending pushes coalesce
func (c *Controller) signalPush() {
	select {
	case c.pushCh <- struct{}{}:
	default:
	}
}

// pushWorker drains queued pushes one at a time
func (c *Controller) pushWorker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case <-c.pushCh:
			c.pushOnce()
		}
	}
}

func (c *Controller) pushOnce() {
	c.mu.Lock()
	if c.state != StateEditing || c.snapshot == nil || c.gateway == nil {
		c.mu.Unlock()
		return
	}
	gameID := c.gameID
	snap := c.snapshot.Clone()
	c.mu.Unlock()

	if err := c.gateway.WriteSnapshot(context.Background(), gameID, snap); err != nil {
		c.logger.Warn("background push failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
	}
}
