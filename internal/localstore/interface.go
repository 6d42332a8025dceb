package localstore

import (
	"context"

	"github.com/kprao/rummyscore/internal/model"
)

// Session is the device-local session metadata persisted alongside the
// snapshot: which game this device is in, its PIN if it holds edit
// rights, and the mode it was last in.
type Session struct {
	GameID model.GameID `json:"gameId"`
	PIN    model.PIN    `json:"pin,omitempty"`
	Mode   model.Mode   `json:"mode"`
}

// Store is the narrow interface to the device's persistent area. It holds
// exactly one current game: a snapshot and its session metadata, each
// read and written atomically as a unit.
type Store interface {
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error
	// LoadSnapshot returns model.ErrNoActiveGame when nothing is stored.
	LoadSnapshot(ctx context.Context) (*model.Snapshot, error)
	ClearSnapshot(ctx context.Context) error

	SaveSession(ctx context.Context, session Session) error
	// LoadSession returns model.ErrNoActiveGame when nothing is stored.
	LoadSession(ctx context.Context) (Session, error)
	ClearSession(ctx context.Context) error
}
