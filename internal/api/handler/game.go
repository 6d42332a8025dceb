package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kprao/rummyscore/internal/api/request"
	"github.com/kprao/rummyscore/internal/api/response"
	"github.com/kprao/rummyscore/internal/api/sse"
	"github.com/kprao/rummyscore/internal/dependencies/clock"
	"github.com/kprao/rummyscore/internal/dependencies/random"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/services/session"
	"github.com/kprao/rummyscore/internal/services/settlement"
	"github.com/kprao/rummyscore/internal/syncgw"
)

// PinHeader carries the edit PIN on snapshot writes
const PinHeader = "X-Game-Pin"

// GameHandler handles game-related endpoints
type GameHandler struct {
	gateway    syncgw.Gateway
	hubManager *sse.HubManager
	clock      clock.Clock
	random     random.Random
	logger     *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(
	gateway syncgw.Gateway,
	hubManager *sse.HubManager,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		gateway:    gateway,
		hubManager: hubManager,
		clock:      clk,
		random:     rnd,
		logger:     logger,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, NewInvalidRequestError("Invalid request body"))
			return
		}
	}
	if req.PointValue < 0 || req.GSTPercent < 0 {
		WriteError(w, model.ErrMalformedSnapshot)
		return
	}

	snap := model.NewSnapshot()
	if req.PointValue > 0 {
		snap.PointValue = req.PointValue
	}
	if req.GSTPercent > 0 {
		snap.GSTPercent = req.GSTPercent
	}

	gameID := session.GenerateGameID(h.random)
	pin := session.GeneratePIN(h.random)

	if err := h.gateway.CreateAuthRecord(r.Context(), &syncgw.AuthRecord{
		GameID:    gameID,
		PIN:       pin,
		CreatedAt: h.clock.Now(),
	}); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.gateway.WriteSnapshot(r.Context(), gameID, snap); err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Info("game created",
		slog.String("game_id", string(gameID)),
	)

	response.JSON(w, http.StatusCreated, response.GameCreated{
		GameID:     string(gameID),
		Pin:        string(pin),
		Snapshot:   snap,
		RoundLabel: snap.CurrentRoundLabel(),
	})
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := model.NormalizeGameID(mux.Vars(r)["id"])

	record, err := h.gateway.ReadSnapshot(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromRecord(gameID, record))
}

// Update handles PUT /api/v1/games/{id}
// The request must carry the game's edit PIN in the X-Game-Pin header.
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	gameID := model.NormalizeGameID(mux.Vars(r)["id"])
	pin := model.PIN(r.Header.Get(PinHeader))

	if !session.ValidPINFormat(pin) {
		WriteError(w, model.ErrInvalidPIN)
		return
	}

	auth, err := h.gateway.ReadAuthRecord(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if auth.PIN != pin {
		WriteError(w, NewPinMismatchError())
		return
	}

	var req request.UpdateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.Snapshot == nil {
		WriteError(w, NewInvalidRequestError("Missing snapshot"))
		return
	}
	if err := req.Snapshot.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.gateway.WriteSnapshot(r.Context(), gameID, req.Snapshot); err != nil {
		WriteError(w, err)
		return
	}

	record, err := h.gateway.ReadSnapshot(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromRecord(gameID, record))
}

// VerifyPin handles POST /api/v1/games/{id}/pin
// The caller learns which mode it may join in; a wrong PIN yields view
// access rather than an error.
func (h *GameHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	gameID := model.NormalizeGameID(mux.Vars(r)["id"])

	var req request.VerifyPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if !session.ValidPINFormat(model.PIN(req.Pin)) {
		WriteError(w, model.ErrInvalidPIN)
		return
	}

	// The game must exist to be joined in any mode.
	if _, err := h.gateway.ReadSnapshot(r.Context(), gameID); err != nil {
		WriteError(w, err)
		return
	}

	mode := model.ModeView
	auth, err := h.gateway.ReadAuthRecord(r.Context(), gameID)
	switch {
	case errors.Is(err, syncgw.ErrNotFound):
		// No credential record; viewing is still allowed.
	case err != nil:
		WriteError(w, err)
		return
	case auth.PIN == model.PIN(req.Pin):
		mode = model.ModeEdit
	}

	response.JSON(w, http.StatusOK, response.PinVerification{Mode: string(mode)})
}

// Standings handles GET /api/v1/games/{id}/standings
func (h *GameHandler) Standings(w http.ResponseWriter, r *http.Request) {
	gameID := model.NormalizeGameID(mux.Vars(r)["id"])

	record, err := h.gateway.ReadSnapshot(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	snap := record.Snapshot
	response.JSON(w, http.StatusOK, response.Standings{
		GameID:     string(gameID),
		RoundLabel: snap.CurrentRoundLabel(),
		Settlement: settlement.Settle(snap.Players, snap.PointValue, snap.GSTPercent),
	})
}

// Events handles GET /api/v1/games/{id}/events
// Streams snapshot writes to the client as SSE events.
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	gameID := model.NormalizeGameID(mux.Vars(r)["id"])

	if _, err := h.gateway.ReadSnapshot(r.Context(), gameID); err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(gameID)
	sse.ServeSSE(w, r, hub)
}
