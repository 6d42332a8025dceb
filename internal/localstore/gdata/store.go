package gdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quasilyte/gdata"

	"github.com/kprao/rummyscore/internal/localstore"
	"github.com/kprao/rummyscore/internal/model"
)

const (
	snapshotItem = "snapshot"
	sessionItem  = "session"
)

// Store persists the current game in the platform's per-app data
// directory. Items are cleared by overwriting them with empty data, so
// an empty item reads back as absent.
type Store struct {
	m *gdata.Manager
}

var _ localstore.Store = (*Store)(nil)

func New(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}
	return &Store{m: m}, nil
}

func (s *Store) SaveSnapshot(_ context.Context, snap *model.Snapshot) error {
	return s.saveItem(snapshotItem, snap)
}

func (s *Store) LoadSnapshot(_ context.Context) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := s.loadItem(snapshotItem, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Store) ClearSnapshot(_ context.Context) error {
	return s.clearItem(snapshotItem)
}

func (s *Store) SaveSession(_ context.Context, session localstore.Session) error {
	return s.saveItem(sessionItem, session)
}

func (s *Store) LoadSession(_ context.Context) (localstore.Session, error) {
	var session localstore.Session
	if err := s.loadItem(sessionItem, &session); err != nil {
		return localstore.Session{}, err
	}
	return session, nil
}

func (s *Store) ClearSession(_ context.Context) error {
	return s.clearItem(sessionItem)
}

func (s *Store) saveItem(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", name, err)
	}
	if err := s.m.SaveItem(name, data); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	return nil
}

func (s *Store) loadItem(name string, v any) error {
	data, err := s.m.LoadItem(name)
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	if len(data) == 0 {
		return model.ErrNoActiveGame
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (s *Store) clearItem(name string) error {
	if err := s.m.SaveItem(name, nil); err != nil {
		return fmt.Errorf("clearing %s: %w", name, err)
	}
	return nil
}
