package syncgw

import (
	"context"
	"errors"
	"time"

	"github.com/kprao/rummyscore/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for the game ID.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable wraps transport failures talking to the backend.
	ErrUnavailable = errors.New("sync backend unavailable")
)

// AuthRecord is the write-once credential record for a game.
type AuthRecord struct {
	GameID    model.GameID `json:"gameId"`
	PIN       model.PIN    `json:"pin"`
	CreatedAt time.Time    `json:"createdAt"`
}

// DataRecord is the shared game document. Each write replaces it
// wholesale; LastUpdated orders writes for last-writer-wins.
type DataRecord struct {
	Snapshot    *model.Snapshot `json:"snapshot"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// UpdateFunc receives each new data record for a subscribed game.
type UpdateFunc func(record *DataRecord)

// ErrorFunc receives subscription transport errors.
type ErrorFunc func(err error)

// Unsubscribe tears down a subscription. Safe to call more than once.
type Unsubscribe func()

// Gateway is the interface to the shared remote document store that
// backs cross-device sync.
type Gateway interface {
	// CreateAuthRecord stores the credential record for a new game.
	CreateAuthRecord(ctx context.Context, record *AuthRecord) error
	// ReadAuthRecord returns ErrNotFound when the game does not exist.
	ReadAuthRecord(ctx context.Context, id model.GameID) (*AuthRecord, error)

	// WriteSnapshot replaces the game's data record with the given
	// snapshot, stamping a fresh LastUpdated.
	WriteSnapshot(ctx context.Context, id model.GameID, snap *model.Snapshot) error
	// ReadSnapshot returns ErrNotFound when the game has no data record.
	ReadSnapshot(ctx context.Context, id model.GameID) (*DataRecord, error)

	// Subscribe delivers each subsequent data record write for the game
	// to onUpdate. Transport errors go to onError; delivery resumes if
	// the backend recovers. The returned Unsubscribe stops delivery.
	Subscribe(ctx context.Context, id model.GameID, onUpdate UpdateFunc, onError ErrorFunc) (Unsubscribe, error)
}
