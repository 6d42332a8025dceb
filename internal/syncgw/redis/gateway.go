package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kprao/rummyscore/internal/dependencies/clock"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/syncgw"
)

// Gateway is a Redis-backed syncgw.Gateway. Records are stored as JSON
// strings and writes are fanned out to subscribers over pub/sub.
type Gateway struct {
	client *redis.Client
	clock  clock.Clock
	cfg    Config
}

// New creates a new Redis gateway instance
func New(cfg Config, clk clock.Clock) (*Gateway, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}

	return &Gateway{
		client: client,
		clock:  clk,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis gateway with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, clk clock.Clock) *Gateway {
	return &Gateway{
		client: client,
		clock:  clk,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (g *Gateway) Close() error {
	return g.client.Close()
}

// Ensure Gateway implements the interface
var _ syncgw.Gateway = (*Gateway)(nil)

func (g *Gateway) CreateAuthRecord(ctx context.Context, record *syncgw.AuthRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if err := g.client.Set(ctx, authKey(record.GameID), data, g.cfg.GameTTL).Err(); err != nil {
		return fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}
	return nil
}

func (g *Gateway) ReadAuthRecord(ctx context.Context, id model.GameID) (*syncgw.AuthRecord, error) {
	data, err := g.client.Get(ctx, authKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, syncgw.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}

	var record syncgw.AuthRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (g *Gateway) WriteSnapshot(ctx context.Context, id model.GameID, snap *model.Snapshot) error {
	record := syncgw.DataRecord{
		Snapshot:    snap,
		LastUpdated: g.clock.Now(),
	}
	data, err := json.Marshal(&record)
	if err != nil {
		return err
	}

	// Pipeline the write and the fan-out so subscribers see every
	// stored record.
	pipe := g.client.Pipeline()
	pipe.Set(ctx, dataKey(id), data, g.cfg.GameTTL)
	pipe.Expire(ctx, authKey(id), g.cfg.GameTTL)
	pipe.Publish(ctx, updatesChannel(id), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}
	return nil
}

func (g *Gateway) ReadSnapshot(ctx context.Context, id model.GameID) (*syncgw.DataRecord, error) {
	data, err := g.client.Get(ctx, dataKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, syncgw.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}

	var record syncgw.DataRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (g *Gateway) Subscribe(ctx context.Context, id model.GameID, onUpdate syncgw.UpdateFunc, onError syncgw.ErrorFunc) (syncgw.Unsubscribe, error) {
	sub := g.client.Subscribe(ctx, updatesChannel(id))

	// Force the SUBSCRIBE round-trip so a dead backend surfaces here
	// rather than on the delivery goroutine.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("%w: %w", syncgw.ErrUnavailable, err)
	}

	go func() {
		for msg := range sub.Channel() {
			var record syncgw.DataRecord
			if err := json.Unmarshal([]byte(msg.Payload), &record); err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			onUpdate(&record)
		}
	}()

	return func() {
		_ = sub.Close()
	}, nil
}
