package roster

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kprao/rummyscore/internal/dependencies/mocks"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(s.random, testutil.NopLogger())
}

func (s *ServiceSuite) TestAddPlayerDefaultsName() {
	snap := model.NewSnapshot()
	s.random.QueueIntn(1, 2, 3) // draws 12, 13, 14

	err := s.service.AddPlayer(snap, "")
	s.Require().NoError(err)

	s.Equal(3, snap.NumPlayers)
	s.Equal("Player 3", snap.Players[2].Name)
	for _, score := range snap.Players[2].Scores {
		s.Equal(model.ScoreNotPlayed, score)
	}
}

func (s *ServiceSuite) TestTwoPlayersNeverNumbered() {
	snap := model.NewSnapshot()
	for _, p := range snap.Players {
		s.Zero(p.DisplayNumber)
	}
}

func (s *ServiceSuite) TestThirdPlayerNumbersEveryone() {
	snap := model.NewSnapshot()
	s.random.QueueIntn(4, 30, 62)

	err := s.service.AddPlayer(snap, "Charlie")
	s.Require().NoError(err)

	s.Equal(15, snap.Players[0].DisplayNumber)
	s.Equal(41, snap.Players[1].DisplayNumber)
	s.Equal(73, snap.Players[2].DisplayNumber)
}

func (s *ServiceSuite) TestDisplayNumberCollisionRedraws() {
	snap := model.NewSnapshot()
	// Second player collides with the first draw, then redraws
	s.random.QueueIntn(4, 4, 30, 62)

	err := s.service.AddPlayer(snap, "Charlie")
	s.Require().NoError(err)

	numbers := map[int]bool{}
	for _, p := range snap.Players {
		s.GreaterOrEqual(p.DisplayNumber, model.MinDisplayNumber)
		s.LessOrEqual(p.DisplayNumber, model.MaxDisplayNumber)
		s.False(numbers[p.DisplayNumber], "display numbers must be distinct")
		numbers[p.DisplayNumber] = true
	}
}

func (s *ServiceSuite) TestAddPlayerCapacity() {
	snap := model.NewSnapshot()
	draws := make([]int, 0, model.MaxPlayers)
	for i := 0; i < model.MaxPlayers; i++ {
		draws = append(draws, i*5)
	}
	s.random.QueueIntn(draws...)

	for i := snap.NumPlayers; i < model.MaxPlayers; i++ {
		s.Require().NoError(s.service.AddPlayer(snap, ""))
	}
	s.Equal(model.MaxPlayers, snap.NumPlayers)

	err := s.service.AddPlayer(snap, "one too many")
	s.ErrorIs(err, model.ErrCapacityExceeded)
	s.Equal(model.MaxPlayers, snap.NumPlayers)
}

func (s *ServiceSuite) TestRemovePlayerMinimum() {
	snap := model.NewSnapshot()
	err := s.service.RemovePlayer(snap, 0)
	s.ErrorIs(err, model.ErrMinimumPlayers)
	s.Equal(2, snap.NumPlayers)
}

func (s *ServiceSuite) TestRemovePlayerResolvesDisplayOrder() {
	snap := model.NewSnapshot()
	snap.Players[0].Name = "Alice"
	snap.Players[1].Name = "Bob"
	s.random.QueueIntn(80, 10, 40) // Alice=91, Bob=21, Charlie=51
	s.Require().NoError(s.service.AddPlayer(snap, "Charlie"))

	// Display order is Bob(21), Charlie(51), Alice(91); removing display
	// position 0 must remove Bob from storage position 1
	err := s.service.RemovePlayer(snap, 0)
	s.Require().NoError(err)

	s.Equal(2, snap.NumPlayers)
	s.Equal("Alice", snap.Players[0].Name)
	s.Equal("Charlie", snap.Players[1].Name)
}

func (s *ServiceSuite) TestShrinkToTwoClearsNumbers() {
	snap := model.NewSnapshot()
	s.random.QueueIntn(0, 20, 40)
	s.Require().NoError(s.service.AddPlayer(snap, "Charlie"))
	for _, p := range snap.Players {
		s.NotZero(p.DisplayNumber)
	}

	s.Require().NoError(s.service.RemovePlayer(snap, 2))
	s.Equal(2, snap.NumPlayers)
	for _, p := range snap.Players {
		s.Zero(p.DisplayNumber)
	}
}

func (s *ServiceSuite) TestAddThenRemoveRestoresRoster() {
	snap := model.NewSnapshot()
	s.Require().NoError(snap.SetScore(0, 0, 20))
	s.Require().NoError(snap.SetScore(1, 0, 5))

	s.random.QueueIntn(0, 20, 40) // 11, 31, 51: new player sorts last
	s.Require().NoError(s.service.AddPlayer(snap, "Late joiner"))
	s.Require().NoError(s.service.RemovePlayer(snap, 2))

	s.Equal(2, snap.NumPlayers)
	s.Equal(20, snap.Players[0].Scores[0])
	s.Equal(5, snap.Players[1].Scores[0])
}

func (s *ServiceSuite) TestSortedForDisplayStableForUnnumbered() {
	snap := model.NewSnapshot()
	snap.Players[0].Name = "Alice"
	snap.Players[1].Name = "Bob"

	ordered := s.service.SortedForDisplay(snap)
	s.Require().Len(ordered, 2)
	s.Equal("Alice", ordered[0].Name)
	s.Equal("Bob", ordered[1].Name)
}

func (s *ServiceSuite) TestSortedForDisplayByNumber() {
	snap := model.NewSnapshot()
	snap.Players[0].Name = "Alice"
	snap.Players[1].Name = "Bob"
	s.random.QueueIntn(80, 10, 40)
	s.Require().NoError(s.service.AddPlayer(snap, "Charlie"))

	ordered := s.service.SortedForDisplay(snap)
	s.Require().Len(ordered, 3)
	s.Equal("Bob", ordered[0].Name)
	s.Equal("Charlie", ordered[1].Name)
	s.Equal("Alice", ordered[2].Name)
}
