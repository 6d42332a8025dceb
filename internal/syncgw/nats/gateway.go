package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/kprao/rummyscore/internal/dependencies/clock"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/syncgw"
)

const (
	authBucket = "rummy_auth"
	dataBucket = "rummy_data"
)

// Config holds NATS connection settings
type Config struct {
	// URL is the NATS server URL (e.g., nats://localhost:4222)
	URL string

	MaxReconnects int
}

// DefaultConfig returns sensible defaults for NATS configuration
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
	}
}

// Gateway is a NATS JetStream key-value backed syncgw.Gateway. Auth and
// data records live in separate buckets keyed by game ID, and
// subscriptions ride the buckets' built-in watch support.
type Gateway struct {
	nc    *nats.Conn
	clock clock.Clock
	auth  jetstream.KeyValue
	data  jetstream.KeyValue
}

// New connects to NATS and ensures the key-value buckets exist
func New(cfg Config, clk clock.Clock) (*Gateway, error) {
	nc, err := nats.Connect(cfg.URL, nats.MaxReconnects(cfg.MaxReconnects))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ctx := context.Background()
	auth, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: authBucket})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}
	data, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: dataBucket})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}

	return &Gateway{
		nc:    nc,
		clock: clk,
		auth:  auth,
		data:  data,
	}, nil
}

// Close closes the NATS connection
func (g *Gateway) Close() error {
	g.nc.Close()
	return nil
}

// Ensure Gateway implements the interface
var _ syncgw.Gateway = (*Gateway)(nil)

func (g *Gateway) CreateAuthRecord(ctx context.Context, record *syncgw.AuthRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if _, err := g.auth.Put(ctx, string(record.GameID), payload); err != nil {
		return fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}
	return nil
}

func (g *Gateway) ReadAuthRecord(ctx context.Context, id model.GameID) (*syncgw.AuthRecord, error) {
	entry, err := g.auth.Get(ctx, string(id))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, syncgw.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}

	var record syncgw.AuthRecord
	if err := json.Unmarshal(entry.Value(), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (g *Gateway) WriteSnapshot(ctx context.Context, id model.GameID, snap *model.Snapshot) error {
	record := syncgw.DataRecord{
		Snapshot:    snap,
		LastUpdated: g.clock.Now(),
	}
	payload, err := json.Marshal(&record)
	if err != nil {
		return err
	}

	if _, err := g.data.Put(ctx, string(id), payload); err != nil {
		return fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}
	return nil
}

func (g *Gateway) ReadSnapshot(ctx context.Context, id model.GameID) (*syncgw.DataRecord, error) {
	entry, err := g.data.Get(ctx, string(id))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, syncgw.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}

	var record syncgw.DataRecord
	if err := json.Unmarshal(entry.Value(), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (g *Gateway) Subscribe(ctx context.Context, id model.GameID, onUpdate syncgw.UpdateFunc, onError syncgw.ErrorFunc) (syncgw.Unsubscribe, error) {
	// UpdatesOnly skips the replay of the current value; the caller
	// reads it explicitly before subscribing.
	watcher, err := g.data.Watch(ctx, string(id), jetstream.UpdatesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}

	go func() {
		for entry := range watcher.Updates() {
			if entry == nil || entry.Operation() != jetstream.KeyValuePut {
				continue
			}
			var record syncgw.DataRecord
			if err := json.Unmarshal(entry.Value(), &record); err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onUpdate(&record)
		}
	}()

	return func() {
		_ = watcher.Stop()
	}, nil
}
