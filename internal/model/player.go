package model

import (
	"fmt"
	"strings"
)

// GameID uniquely identifies a game across devices
type GameID string

// NormalizeGameID upper-cases and trims an identifier received from any
// input source (scan, manual entry, share text).
func NormalizeGameID(s string) GameID {
	return GameID(strings.ToUpper(strings.TrimSpace(s)))
}

// PIN is the 4-digit credential gating edit access to a game
type PIN string

// Mode is the access level a session holds on a game
type Mode string

const (
	ModeEdit Mode = "edit"
	ModeView Mode = "view"
)

// Game limits
const (
	NumRounds  = 10
	MinPlayers = 2
	MaxPlayers = 15

	// Valid per-round scores; anything outside normalizes to ScoreNotPlayed
	MinScore = 0
	MaxScore = 100

	// ScoreNotPlayed marks a round the player has not recorded yet
	ScoreNotPlayed = -1

	// Display numbers are drawn from [11, 99]; 0 means unassigned
	MinDisplayNumber = 11
	MaxDisplayNumber = 99
)

// Player holds one player's name and per-round scores.
// DisplayNumber is 0 for games of 2 players; for larger games each player
// carries a distinct randomized number used solely for display ordering,
// never as an identity key (identity is the storage index).
type Player struct {
	Name          string `json:"name"`
	Scores        []int  `json:"scores"`
	DisplayNumber int    `json:"displayNumber,omitempty"`
}

// NewPlayer creates a player with all rounds unplayed.
// An empty name defaults to "Player {index+1}".
func NewPlayer(name string, index int) Player {
	if name == "" {
		name = fmt.Sprintf("Player %d", index+1)
	}
	scores := make([]int, NumRounds)
	for i := range scores {
		scores[i] = ScoreNotPlayed
	}
	return Player{Name: name, Scores: scores}
}

// Total sums the player's scores, counting unplayed rounds as 0.
func (p *Player) Total() int {
	total := 0
	for _, s := range p.Scores {
		if s != ScoreNotPlayed {
			total += s
		}
	}
	return total
}

// Played reports whether the player has recorded a score for the given
// 0-based round.
func (p *Player) Played(round int) bool {
	return round >= 0 && round < len(p.Scores) && p.Scores[round] != ScoreNotPlayed
}

// Clone returns a deep copy of the player.
func (p *Player) Clone() Player {
	scores := make([]int, len(p.Scores))
	copy(scores, p.Scores)
	return Player{Name: p.Name, Scores: scores, DisplayNumber: p.DisplayNumber}
}
