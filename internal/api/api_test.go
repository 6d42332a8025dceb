package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kprao/rummyscore/internal/api"
	"github.com/kprao/rummyscore/internal/api/response"
	"github.com/kprao/rummyscore/internal/factory"
	"github.com/kprao/rummyscore/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Gateway:    app.Gateway,
		HubManager: app.HubManager,
		Clock:      app.Clock,
		Random:     app.Random,
	})

	return &testServer{handler: router}
}

func (ts *testServer) request(method, path string, body any, pin string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if pin != "" {
		req.Header.Set("X-Game-Pin", pin)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games", nil, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.GameCreated
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{9}$`), resp.GameID)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}$`), resp.Pin)
	assert.NotEqual(t, "0000", resp.Pin)
	assert.Equal(t, "R1", resp.RoundLabel)

	require.NotNil(t, resp.Snapshot)
	assert.Len(t, resp.Snapshot.Players, 2)
	assert.Equal(t, "Player 1", resp.Snapshot.Players[0].Name)
	assert.Equal(t, model.DefaultPointValue, resp.Snapshot.PointValue)
	assert.Equal(t, model.DefaultGSTPercent, resp.Snapshot.GSTPercent)
}

func TestCreateGameWithSettings(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]float64{"pointValue": 0.5, "gstPercent": 10}
	rr := ts.request(http.MethodPost, "/api/v1/games", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.GameCreated
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0.5, resp.Snapshot.PointValue)
	assert.Equal(t, 10.0, resp.Snapshot.GSTPercent)
}

func TestGetGame(t *testing.T) {
	ts := newTestServer(t)
	created := createGame(t, ts)

	rr := ts.request(http.MethodGet, "/api/v1/games/"+created.GameID, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, created.GameID, resp.GameID)
	assert.Len(t, resp.Snapshot.Players, 2)
	assert.False(t, resp.LastUpdated.IsZero())
}

func TestGetGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/NOSUCHGAM", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "GAME_NOT_FOUND")
}

func TestUpdateGame(t *testing.T) {
	ts := newTestServer(t)
	created := createGame(t, ts)

	snap := created.Snapshot
	require.NoError(t, snap.SetScore(0, 0, 20))
	require.NoError(t, snap.SetScore(1, 0, 5))

	body := map[string]any{"snapshot": snap}
	rr := ts.request(http.MethodPut, "/api/v1/games/"+created.GameID, body, created.Pin)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.GameState
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.Snapshot.Players[0].Scores[0])
	assert.Equal(t, "R2", resp.RoundLabel)
}

func TestUpdateGameWrongPin(t *testing.T) {
	ts := newTestServer(t)
	created := createGame(t, ts)

	wrongPin := "1111"
	if created.Pin == wrongPin {
		wrongPin = "2222"
	}

	body := map[string]any{"snapshot": created.Snapshot}
	rr := ts.request(http.MethodPut, "/api/v1/games/"+created.GameID, body, wrongPin)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "PIN_MISMATCH")
}

func TestUpdateGameMalformedPin(t *testing.T) {
	ts := newTestServer(t)
	created := createGame(t, ts)

	body := map[string]any{"snapshot": created.Snapshot}
	rr := ts.request(http.MethodPut, "/api/v1/games/"+created.GameID, body, "12ab")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_REJECTED")
}

func TestUpdateGameRejectsInvalidSnapshot(t *testing.T) {
	ts := newTestServer(t)
	created := createGame(t, ts)

	snap := created.Snapshot
	snap.NumPlayers = 7 // inconsistent with two players

	body := map[string]any{"snapshot": snap}
	rr := ts.request(http.MethodPut, "/api/v1/games/"+created.GameID, body, created.Pin)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_REJECTED")
}

func TestUpdateGameRejectsBadDisplayNumbers(t *testing.T) {
	ts := newTestServer(t)
	created := createGame(t, ts)

	// A third player joins without the table numbers the larger roster
	// requires.
	snap := created.Snapshot
	snap.Players = append(snap.Players, model.NewPlayer("Charlie", 2))
	snap.NumPlayers = 3

	body := map[string]any{"snapshot": snap}
	rr := ts.request(http.MethodPut, "/api/v1/games/"+created.GameID, body, created.Pin)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_REJECTED")

	// Duplicate numbers are rejected too.
	snap.Players[0].DisplayNumber = 42
	snap.Players[1].DisplayNumber = 42
	snap.Players[2].DisplayNumber = 77

	rr = ts.request(http.MethodPut, "/api/v1/games/"+created.GameID, body, created.Pin)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	// Distinct in-range numbers pass.
	snap.Players[1].DisplayNumber = 63

	rr = ts.request(http.MethodPut, "/api/v1/games/"+created.GameID, body, created.Pin)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestVerifyPin(t *testing.T) {
	ts := newTestServer(t)
	created := createGame(t, ts)

	// Correct PIN grants edit mode
	rr := ts.request(http.MethodPost, "/api/v1/games/"+created.GameID+"/pin",
		map[string]string{"pin": created.Pin}, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.PinVerification
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "edit", resp.Mode)

	// Wrong PIN downgrades to view mode
	wrongPin := "1111"
	if created.Pin == wrongPin {
		wrongPin = "2222"
	}
	rr = ts.request(http.MethodPost, "/api/v1/games/"+created.GameID+"/pin",
		map[string]string{"pin": wrongPin}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "view", resp.Mode)
}

func TestVerifyPinMalformed(t *testing.T) {
	ts := newTestServer(t)
	created := createGame(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+created.GameID+"/pin",
		map[string]string{"pin": "123"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "VALIDATION_REJECTED")
}

func TestVerifyPinGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games/NOSUCHGAM/pin",
		map[string]string{"pin": "1234"}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStandings(t *testing.T) {
	ts := newTestServer(t)
	created := createGame(t, ts)

	snap := created.Snapshot
	require.NoError(t, snap.SetScore(0, 0, 20))
	require.NoError(t, snap.SetScore(1, 0, 5))

	body := map[string]any{"snapshot": snap}
	rr := ts.request(http.MethodPut, "/api/v1/games/"+created.GameID, body, created.Pin)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+created.GameID+"/standings", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Standings
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Settlement.Entries, 2)

	// Player 2 leads with the lower total and pays tax on the win.
	assert.Equal(t, "Player 2", resp.Settlement.Entries[0].Name)
	assert.Equal(t, 2, resp.Settlement.Entries[0].Gross)
	assert.Equal(t, 1, resp.Settlement.Entries[0].Tax)
	assert.Equal(t, 1, resp.Settlement.Entries[0].Net)
	assert.Equal(t, -2, resp.Settlement.Entries[1].Gross)
	assert.Equal(t, 0, resp.Settlement.Entries[1].Tax)
	assert.Equal(t, 1, resp.Settlement.TotalTax)
}

func TestEventsGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/NOSUCHGAM/events", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// Helper functions

func createGame(t *testing.T, ts *testServer) response.GameCreated {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/games", nil, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.GameCreated
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
