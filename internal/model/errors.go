package model

import "errors"

// Common errors used across the application
var (
	// Roster errors
	ErrCapacityExceeded = errors.New("maximum of 15 players reached")
	ErrMinimumPlayers   = errors.New("at least 2 players are required")

	// Score model errors (programmer-error class)
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrMalformedSnapshot = errors.New("malformed game snapshot")

	// Session errors
	ErrNoActiveGame = errors.New("no active game")
	ErrViewOnly     = errors.New("mutation rejected in view-only mode")
	ErrInvalidPIN   = errors.New("pin must be exactly 4 digits")

	// Remote errors surfaced through the session boundary
	ErrGameNotFound = errors.New("game not found")
)
