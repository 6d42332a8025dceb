package model

import "fmt"

// Defaults for a fresh game
const (
	DefaultPointValue = 0.15
	DefaultGSTPercent = 25.0
)

// Snapshot is the full serializable state of one game, treated as a single
// replaceable unit: settings plus every player's scores. It is mutated on
// local edits and replaced wholesale on cloud load or remote update.
type Snapshot struct {
	NumPlayers int      `json:"numPlayers"`
	PointValue float64  `json:"pointValue"`
	GSTPercent float64  `json:"gstPercent"`
	Players    []Player `json:"players"`
}

// NewSnapshot creates the starting state: two default players, all rounds
// unplayed, default monetary settings.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		NumPlayers: MinPlayers,
		PointValue: DefaultPointValue,
		GSTPercent: DefaultGSTPercent,
		Players: []Player{
			NewPlayer("", 0),
			NewPlayer("", 1),
		},
	}
}

// NormalizeScore maps any out-of-range value to the not-played sentinel.
// Ambiguous input is treated as unplayed rather than rejected.
func NormalizeScore(value int) int {
	if value < MinScore || value > MaxScore {
		return ScoreNotPlayed
	}
	return value
}

// SetScore records a score for a player's round, normalizing out-of-range
// values to not-played. Indexes are 0-based; a bad index is a programmer
// error and is reported rather than clamped.
func (s *Snapshot) SetScore(playerIndex, roundIndex, value int) error {
	if playerIndex < 0 || playerIndex >= len(s.Players) {
		return fmt.Errorf("%w: player index %d", ErrIndexOutOfRange, playerIndex)
	}
	if roundIndex < 0 || roundIndex >= NumRounds {
		return fmt.Errorf("%w: round index %d", ErrIndexOutOfRange, roundIndex)
	}
	s.Players[playerIndex].Scores[roundIndex] = NormalizeScore(value)
	return nil
}

// TotalFor returns the given player's running total.
func (s *Snapshot) TotalFor(playerIndex int) (int, error) {
	if playerIndex < 0 || playerIndex >= len(s.Players) {
		return 0, fmt.Errorf("%w: player index %d", ErrIndexOutOfRange, playerIndex)
	}
	return s.Players[playerIndex].Total(), nil
}

// Rename sets a player's display name.
func (s *Snapshot) Rename(playerIndex int, name string) error {
	if playerIndex < 0 || playerIndex >= len(s.Players) {
		return fmt.Errorf("%w: player index %d", ErrIndexOutOfRange, playerIndex)
	}
	s.Players[playerIndex].Name = name
	return nil
}

// CurrentRound returns the 1-based index of the first round some player has
// not recorded, and whether the game is over (all 10 rounds recorded by
// every player).
func (s *Snapshot) CurrentRound() (round int, over bool) {
	for r := 0; r < NumRounds; r++ {
		for i := range s.Players {
			if !s.Players[i].Played(r) {
				return r + 1, false
			}
		}
	}
	return 0, true
}

// CurrentRoundLabel renders the round marker the way the scoreboard shows
// it: "R3", or "GAME OVER" once every round is recorded.
func (s *Snapshot) CurrentRoundLabel() string {
	round, over := s.CurrentRound()
	if over {
		return "GAME OVER"
	}
	return fmt.Sprintf("R%d", round)
}

// LastCompletedRound returns the highest 1-based round that every player
// has recorded, or 0 when none is complete.
func (s *Snapshot) LastCompletedRound() int {
	last := 0
	for r := 0; r < NumRounds; r++ {
		for i := range s.Players {
			if !s.Players[i].Played(r) {
				return last
			}
		}
		last = r + 1
	}
	return last
}

// Validate checks the structural invariants of a snapshot: player count
// bounds, NumPlayers consistency, the fixed 10-entry score rows, and the
// display-number rules (absent at 2 players, distinct and in range above).
// A failure means a malformed document, not bad user input.
func (s *Snapshot) Validate() error {
	if len(s.Players) < MinPlayers || len(s.Players) > MaxPlayers {
		return fmt.Errorf("%w: %d players", ErrMalformedSnapshot, len(s.Players))
	}
	if s.NumPlayers != len(s.Players) {
		return fmt.Errorf("%w: numPlayers %d != %d players", ErrMalformedSnapshot, s.NumPlayers, len(s.Players))
	}
	if s.PointValue <= 0 {
		return fmt.Errorf("%w: pointValue %v", ErrMalformedSnapshot, s.PointValue)
	}
	if s.GSTPercent < 0 {
		return fmt.Errorf("%w: gstPercent %v", ErrMalformedSnapshot, s.GSTPercent)
	}
	for i := range s.Players {
		if len(s.Players[i].Scores) != NumRounds {
			return fmt.Errorf("%w: player %d has %d score entries", ErrMalformedSnapshot, i, len(s.Players[i].Scores))
		}
	}
	seen := make(map[int]bool, len(s.Players))
	for i := range s.Players {
		n := s.Players[i].DisplayNumber
		if len(s.Players) == MinPlayers {
			if n != 0 {
				return fmt.Errorf("%w: player %d has display number %d in a 2-player game", ErrMalformedSnapshot, i, n)
			}
			continue
		}
		if n < MinDisplayNumber || n > MaxDisplayNumber {
			return fmt.Errorf("%w: player %d has display number %d", ErrMalformedSnapshot, i, n)
		}
		if seen[n] {
			return fmt.Errorf("%w: duplicate display number %d", ErrMalformedSnapshot, n)
		}
		seen[n] = true
	}
	return nil
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	players := make([]Player, len(s.Players))
	for i := range s.Players {
		players[i] = s.Players[i].Clone()
	}
	return &Snapshot{
		NumPlayers: s.NumPlayers,
		PointValue: s.PointValue,
		GSTPercent: s.GSTPercent,
		Players:    players,
	}
}
