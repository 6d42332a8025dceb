package roster

import (
	"log/slog"
	"sort"

	"github.com/kprao/rummyscore/internal/dependencies/random"
	"github.com/kprao/rummyscore/internal/model"
)

// Service manages the player roster of a snapshot: adding and removing
// players and the randomized display ordering used for games of more than
// two players.
type Service struct {
	random random.Random
	logger *slog.Logger
}

// New creates a new roster service
func New(random random.Random, logger *slog.Logger) *Service {
	return &Service{
		random: random,
		logger: logger,
	}
}

// AddPlayer appends a player with all rounds unplayed. When the roster
// grows past 2 players, every player lacking a display number gets one
// (the two original players retroactively included) before the new player
// draws theirs, so numbers never collide.
func (s *Service) AddPlayer(snap *model.Snapshot, name string) error {
	if len(snap.Players) >= model.MaxPlayers {
		return model.ErrCapacityExceeded
	}

	player := model.NewPlayer(name, len(snap.Players))
	snap.Players = append(snap.Players, player)
	snap.NumPlayers = len(snap.Players)

	if len(snap.Players) > model.MinPlayers {
		s.assignDisplayNumbers(snap)
	}

	s.logger.Info("player added",
		slog.String("name", player.Name),
		slog.Int("num_players", snap.NumPlayers),
	)
	return nil
}

// RemovePlayer removes the player at the given 0-based display-order
// position. The index is resolved against the display ordering, not
// storage order. Shrinking back to exactly 2 players clears every display
// number.
func (s *Service) RemovePlayer(snap *model.Snapshot, displayIndex int) error {
	if len(snap.Players) <= model.MinPlayers {
		return model.ErrMinimumPlayers
	}
	order := s.displayOrder(snap)
	if displayIndex < 0 || displayIndex >= len(order) {
		return model.ErrIndexOutOfRange
	}

	storageIndex := order[displayIndex]
	removed := snap.Players[storageIndex].Name
	snap.Players = append(snap.Players[:storageIndex], snap.Players[storageIndex+1:]...)
	snap.NumPlayers = len(snap.Players)

	if len(snap.Players) == model.MinPlayers {
		for i := range snap.Players {
			snap.Players[i].DisplayNumber = 0
		}
	}

	s.logger.Info("player removed",
		slog.String("name", removed),
		slog.Int("num_players", snap.NumPlayers),
	)
	return nil
}

// SortedForDisplay returns the players in display order: ascending display
// number, with unnumbered players after all numbered ones, stable by
// storage order.
func (s *Service) SortedForDisplay(snap *model.Snapshot) []model.Player {
	order := s.displayOrder(snap)
	players := make([]model.Player, len(order))
	for i, idx := range order {
		players[i] = snap.Players[idx].Clone()
	}
	return players
}

// displayOrder maps display positions to storage indexes.
func (s *Service) displayOrder(snap *model.Snapshot) []int {
	order := make([]int, len(snap.Players))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		na := snap.Players[order[a]].DisplayNumber
		nb := snap.Players[order[b]].DisplayNumber
		if na == 0 || nb == 0 {
			return nb == 0 && na != 0
		}
		return na < nb
	})
	return order
}

// assignDisplayNumbers draws a number for every player that lacks one,
// in storage order, redrawing on collision.
func (s *Service) assignDisplayNumbers(snap *model.Snapshot) {
	taken := make(map[int]bool, len(snap.Players))
	for i := range snap.Players {
		if n := snap.Players[i].DisplayNumber; n != 0 {
			taken[n] = true
		}
	}
	for i := range snap.Players {
		if snap.Players[i].DisplayNumber != 0 {
			continue
		}
		n := s.drawNumber(taken)
		snap.Players[i].DisplayNumber = n
		taken[n] = true
	}
}

func (s *Service) drawNumber(taken map[int]bool) int {
	span := model.MaxDisplayNumber - model.MinDisplayNumber + 1
	for {
		n := model.MinDisplayNumber + s.random.Intn(span)
		if !taken[n] {
			return n
		}
	}
}
