package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kprao/rummyscore/internal/dependencies/clock"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/syncgw"
)

// Gateway is an in-memory syncgw.Gateway. It backs single-process
// deployments and tests, delivering subscription updates synchronously
// on the writer's goroutine.
type Gateway struct {
	mu          sync.RWMutex
	clock       clock.Clock
	auth        map[model.GameID]*syncgw.AuthRecord
	data        map[model.GameID]*syncgw.DataRecord
	subscribers map[model.GameID]map[string]syncgw.UpdateFunc
}

var _ syncgw.Gateway = (*Gateway)(nil)

func New(clk clock.Clock) *Gateway {
	return &Gateway{
		clock:       clk,
		auth:        make(map[model.GameID]*syncgw.AuthRecord),
		data:        make(map[model.GameID]*syncgw.DataRecord),
		subscribers: make(map[model.GameID]map[string]syncgw.UpdateFunc),
	}
}

func (g *Gateway) CreateAuthRecord(_ context.Context, record *syncgw.AuthRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	rec := *record
	g.auth[record.GameID] = &rec
	return nil
}

func (g *Gateway) ReadAuthRecord(_ context.Context, id model.GameID) (*syncgw.AuthRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	record, ok := g.auth[id]
	if !ok {
		return nil, syncgw.ErrNotFound
	}
	rec := *record
	return &rec, nil
}

func (g *Gateway) WriteSnapshot(_ context.Context, id model.GameID, snap *model.Snapshot) error {
	record := &syncgw.DataRecord{
		Snapshot:    snap.Clone(),
		LastUpdated: g.clock.Now(),
	}

	g.mu.Lock()
	g.data[id] = record
	callbacks := make([]syncgw.UpdateFunc, 0, len(g.subscribers[id]))
	for _, cb := range g.subscribers[id] {
		callbacks = append(callbacks, cb)
	}
	g.mu.Unlock()

	// Deliver outside the lock so a callback can call back into the
	// gateway without deadlocking.
	for _, cb := range callbacks {
		cb(&syncgw.DataRecord{
			Snapshot:    record.Snapshot.Clone(),
			LastUpdated: record.LastUpdated,
		})
	}
	return nil
}

func (g *Gateway) ReadSnapshot(_ context.Context, id model.GameID) (*syncgw.DataRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	record, ok := g.data[id]
	if !ok {
		return nil, syncgw.ErrNotFound
	}
	return &syncgw.DataRecord{
		Snapshot:    record.Snapshot.Clone(),
		LastUpdated: record.LastUpdated,
	}, nil
}

func (g *Gateway) Subscribe(_ context.Context, id model.GameID, onUpdate syncgw.UpdateFunc, _ syncgw.ErrorFunc) (syncgw.Unsubscribe, error) {
	subID := uuid.New().String()

	g.mu.Lock()
	if g.subscribers[id] == nil {
		g.subscribers[id] = make(map[string]syncgw.UpdateFunc)
	}
	g.subscribers[id][subID] = onUpdate
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subscribers[id], subID)
		if len(g.subscribers[id]) == 0 {
			delete(g.subscribers, id)
		}
	}, nil
}
