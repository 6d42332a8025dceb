package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kprao/rummyscore/internal/localstore"
	"github.com/kprao/rummyscore/internal/model"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = New()
}

func (s *StoreSuite) TestLoadWhenEmpty() {
	_, err := s.store.LoadSnapshot(s.ctx)
	s.Require().ErrorIs(err, model.ErrNoActiveGame)

	_, err = s.store.LoadSession(s.ctx)
	s.Require().ErrorIs(err, model.ErrNoActiveGame)
}

func (s *StoreSuite) TestSnapshotRoundTrip() {
	snap := model.NewSnapshot()
	s.Require().NoError(snap.SetScore(0, 0, 42))

	s.Require().NoError(s.store.SaveSnapshot(s.ctx, snap))

	loaded, err := s.store.LoadSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(42, loaded.Players[0].Scores[0])

	// The stored copy is isolated from later mutation.
	s.Require().NoError(snap.SetScore(0, 0, 7))
	loaded, err = s.store.LoadSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(42, loaded.Players[0].Scores[0])
}

func (s *StoreSuite) TestSessionRoundTrip() {
	session := localstore.Session{
		GameID: "ABC123XYZ",
		PIN:    "4821",
		Mode:   model.ModeEdit,
	}
	s.Require().NoError(s.store.SaveSession(s.ctx, session))

	loaded, err := s.store.LoadSession(s.ctx)
	s.Require().NoError(err)
	s.Equal(session, loaded)
}

func (s *StoreSuite) TestClear() {
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, model.NewSnapshot()))
	s.Require().NoError(s.store.SaveSession(s.ctx, localstore.Session{
		GameID: "ABC123XYZ",
		Mode:   model.ModeView,
	}))

	s.Require().NoError(s.store.ClearSnapshot(s.ctx))
	s.Require().NoError(s.store.ClearSession(s.ctx))

	_, err := s.store.LoadSnapshot(s.ctx)
	s.Require().ErrorIs(err, model.ErrNoActiveGame)
	_, err = s.store.LoadSession(s.ctx)
	s.Require().ErrorIs(err, model.ErrNoActiveGame)
}
