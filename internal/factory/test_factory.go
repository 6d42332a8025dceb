package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/kprao/rummyscore/internal/api/sse"
	"github.com/kprao/rummyscore/internal/dependencies/mocks"
	"github.com/kprao/rummyscore/internal/syncgw/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	gateway := memory.New(mockClock)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := &App{
		Gateway:    gateway,
		Clock:      mockClock,
		Random:     mockRandom,
		HubManager: sse.NewHubManager(gateway, logger),
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
