package request

import "github.com/kprao/rummyscore/internal/model"

// CreateGameRequest is the request body for creating a game. Both
// fields are optional and fall back to the standard defaults.
type CreateGameRequest struct {
	PointValue float64 `json:"pointValue,omitempty"`
	GSTPercent float64 `json:"gstPercent,omitempty"`
}

// UpdateGameRequest is the request body for replacing a game's snapshot
type UpdateGameRequest struct {
	Snapshot *model.Snapshot `json:"snapshot"`
}

// VerifyPinRequest is the request body for verifying an edit PIN
type VerifyPinRequest struct {
	Pin string `json:"pin"`
}
