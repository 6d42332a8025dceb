package memory

import (
	"context"
	"sync"

	"github.com/kprao/rummyscore/internal/localstore"
	"github.com/kprao/rummyscore/internal/model"
)

// Store is an in-memory localstore.Store for tests and for server-side
// controllers that have no device storage.
type Store struct {
	mu      sync.RWMutex
	snap    *model.Snapshot
	session *localstore.Session
}

var _ localstore.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) SaveSnapshot(_ context.Context, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	return nil
}

func (s *Store) LoadSnapshot(_ context.Context) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, model.ErrNoActiveGame
	}
	return s.snap.Clone(), nil
}

func (s *Store) ClearSnapshot(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}

func (s *Store) SaveSession(_ context.Context, session localstore.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

func (s *Store) LoadSession(_ context.Context) (localstore.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return localstore.Session{}, model.ErrNoActiveGame
	}
	return *s.session, nil
}

func (s *Store) ClearSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
