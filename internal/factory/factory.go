package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/kprao/rummyscore/internal/api/sse"
	"github.com/kprao/rummyscore/internal/dependencies/clock"
	"github.com/kprao/rummyscore/internal/dependencies/random"
	"github.com/kprao/rummyscore/internal/syncgw"
	"github.com/kprao/rummyscore/internal/syncgw/memory"
	natsgw "github.com/kprao/rummyscore/internal/syncgw/nats"
	redisgw "github.com/kprao/rummyscore/internal/syncgw/redis"
)

// Gateway type constants
const (
	GatewayTypeMemory = "memory"
	GatewayTypeRedis  = "redis"
	GatewayTypeNATS   = "nats"
)

// App contains all wired application components
type App struct {
	// Sync backend
	Gateway syncgw.Gateway

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	HubManager *sse.HubManager
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// GatewayType selects the sync backend ("memory", "redis" or "nats")
	// If empty, defaults to "memory"
	GatewayType string
	// RedisConfig holds Redis connection settings (required if GatewayType is "redis")
	RedisConfig *redisgw.Config
	// NATSConfig holds NATS connection settings (required if GatewayType is "nats")
	NATSConfig *natsgw.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Create the sync gateway based on type
	var gateway syncgw.Gateway
	gatewayType := cfg.GatewayType
	if gatewayType == "" {
		gatewayType = GatewayTypeMemory
	}

	switch gatewayType {
	case GatewayTypeMemory:
		gateway = memory.New(clk)
	case GatewayTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when GatewayType is redis")
		}
		redisGateway, err := redisgw.New(*cfg.RedisConfig, clk)
		if err != nil {
			return nil, err
		}
		gateway = redisGateway
	case GatewayTypeNATS:
		if cfg.NATSConfig == nil {
			return nil, errors.New("NATSConfig required when GatewayType is nats")
		}
		natsGateway, err := natsgw.New(*cfg.NATSConfig, clk)
		if err != nil {
			return nil, err
		}
		gateway = natsGateway
	default:
		return nil, errors.New("invalid GatewayType: must be 'memory', 'redis' or 'nats'")
	}

	return &App{
		Gateway:    gateway,
		Clock:      clk,
		Random:     rnd,
		HubManager: sse.NewHubManager(gateway, logger),
	}, nil
}
