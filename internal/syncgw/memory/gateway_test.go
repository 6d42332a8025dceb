package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kprao/rummyscore/internal/dependencies/mocks"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/syncgw"
)

type GatewaySuite struct {
	suite.Suite
	ctx     context.Context
	clock   *mocks.MockClock
	gateway *Gateway
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.gateway = New(s.clock)
}

func (s *GatewaySuite) TestAuthRecordRoundTrip() {
	record := &syncgw.AuthRecord{
		GameID:    "ABC123XYZ",
		PIN:       "4821",
		CreatedAt: s.clock.Now(),
	}
	s.Require().NoError(s.gateway.CreateAuthRecord(s.ctx, record))

	loaded, err := s.gateway.ReadAuthRecord(s.ctx, "ABC123XYZ")
	s.Require().NoError(err)
	s.Equal(record, loaded)
}

func (s *GatewaySuite) TestReadMissingRecords() {
	_, err := s.gateway.ReadAuthRecord(s.ctx, "NOPE")
	s.Require().ErrorIs(err, syncgw.ErrNotFound)

	_, err = s.gateway.ReadSnapshot(s.ctx, "NOPE")
	s.Require().ErrorIs(err, syncgw.ErrNotFound)
}

func (s *GatewaySuite) TestWriteSnapshotStampsTime() {
	snap := model.NewSnapshot()
	s.Require().NoError(s.gateway.WriteSnapshot(s.ctx, "ABC123XYZ", snap))

	record, err := s.gateway.ReadSnapshot(s.ctx, "ABC123XYZ")
	s.Require().NoError(err)
	s.Equal(s.clock.CurrentTime, record.LastUpdated)

	s.clock.Advance(time.Minute)
	s.Require().NoError(s.gateway.WriteSnapshot(s.ctx, "ABC123XYZ", snap))

	record, err = s.gateway.ReadSnapshot(s.ctx, "ABC123XYZ")
	s.Require().NoError(err)
	s.Equal(s.clock.CurrentTime, record.LastUpdated)
}

func (s *GatewaySuite) TestWriteReplacesWholeRecord() {
	snap := model.NewSnapshot()
	s.Require().NoError(snap.SetScore(0, 0, 42))
	s.Require().NoError(s.gateway.WriteSnapshot(s.ctx, "ABC123XYZ", snap))

	replacement := model.NewSnapshot()
	s.Require().NoError(s.gateway.WriteSnapshot(s.ctx, "ABC123XYZ", replacement))

	record, err := s.gateway.ReadSnapshot(s.ctx, "ABC123XYZ")
	s.Require().NoError(err)
	s.Equal(model.ScoreNotPlayed, record.Snapshot.Players[0].Scores[0])
}

func (s *GatewaySuite) TestSubscribeDeliversWrites() {
	var received []*syncgw.DataRecord
	unsub, err := s.gateway.Subscribe(s.ctx, "ABC123XYZ", func(record *syncgw.DataRecord) {
		received = append(received, record)
	}, nil)
	s.Require().NoError(err)
	defer unsub()

	snap := model.NewSnapshot()
	s.Require().NoError(snap.SetScore(1, 0, 17))
	s.Require().NoError(s.gateway.WriteSnapshot(s.ctx, "ABC123XYZ", snap))

	s.Require().Len(received, 1)
	s.Equal(17, received[0].Snapshot.Players[1].Scores[0])
	s.Equal(s.clock.CurrentTime, received[0].LastUpdated)
}

func (s *GatewaySuite) TestSubscribeIgnoresOtherGames() {
	var count int
	unsub, err := s.gateway.Subscribe(s.ctx, "ABC123XYZ", func(*syncgw.DataRecord) {
		count++
	}, nil)
	s.Require().NoError(err)
	defer unsub()

	s.Require().NoError(s.gateway.WriteSnapshot(s.ctx, "OTHERGAME", model.NewSnapshot()))
	s.Equal(0, count)
}

func (s *GatewaySuite) TestUnsubscribeStopsDelivery() {
	var count int
	unsub, err := s.gateway.Subscribe(s.ctx, "ABC123XYZ", func(*syncgw.DataRecord) {
		count++
	}, nil)
	s.Require().NoError(err)

	s.Require().NoError(s.gateway.WriteSnapshot(s.ctx, "ABC123XYZ", model.NewSnapshot()))
	unsub()
	unsub() // second call is a no-op
	s.Require().NoError(s.gateway.WriteSnapshot(s.ctx, "ABC123XYZ", model.NewSnapshot()))

	s.Equal(1, count)
}

func (s *GatewaySuite) TestCallbackMayReadBack() {
	unsub, err := s.gateway.Subscribe(s.ctx, "ABC123XYZ", func(record *syncgw.DataRecord) {
		_, err := s.gateway.ReadSnapshot(s.ctx, "ABC123XYZ")
		s.Require().NoError(err)
	}, nil)
	s.Require().NoError(err)
	defer unsub()

	s.Require().NoError(s.gateway.WriteSnapshot(s.ctx, "ABC123XYZ", model.NewSnapshot()))
}
