package response

import (
	"time"

	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/services/settlement"
	"github.com/kprao/rummyscore/internal/syncgw"
)

// GameCreated is the response for creating a game. It is the only
// place the backend ever returns the edit PIN.
type GameCreated struct {
	GameID     string          `json:"gameId"`
	Pin        string          `json:"pin"`
	Snapshot   *model.Snapshot `json:"snapshot"`
	RoundLabel string          `json:"roundLabel"`
}

// GameState is the response for reading a game
type GameState struct {
	GameID      string          `json:"gameId"`
	Snapshot    *model.Snapshot `json:"snapshot"`
	RoundLabel  string          `json:"roundLabel"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// GameStateFromRecord converts a stored data record to a GameState
func GameStateFromRecord(id model.GameID, record *syncgw.DataRecord) GameState {
	return GameState{
		GameID:      string(id),
		Snapshot:    record.Snapshot,
		RoundLabel:  record.Snapshot.CurrentRoundLabel(),
		LastUpdated: record.LastUpdated,
	}
}

// PinVerification is the response for verifying an edit PIN
type PinVerification struct {
	Mode string `json:"mode"`
}

// Standings is the response for a game's settlement
type Standings struct {
	GameID     string            `json:"gameId"`
	RoundLabel string            `json:"roundLabel"`
	Settlement settlement.Result `json:"settlement"`
}
