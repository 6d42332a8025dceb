package sse

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kprao/rummyscore/internal/dependencies/mocks"
	"github.com/kprao/rummyscore/internal/model"
	"github.com/kprao/rummyscore/internal/syncgw/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "snapshot",
			data:      "{\n  \"numPlayers\": 2\n}",
			expected:  "event: snapshot\ndata: {\ndata:   \"numPlayers\": 2\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single line",
			input:    "hello",
			expected: []string{"hello"},
		},
		{
			name:     "two lines",
			input:    "line1\nline2",
			expected: []string{"line1", "line2"},
		},
		{
			name:     "trailing newline",
			input:    "line1\n",
			expected: []string{"line1"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{""},
		},
		{
			name:     "crlf line endings",
			input:    "line1\r\nline2\r\n",
			expected: []string{"line1", "line2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("GAME01ABC", testLogger())
	go hub.Run()
	defer hub.Close()

	// Create a client
	client := NewClient(hub)
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	// Broadcast a message
	hub.BroadcastEvent("test-event", "test data")

	// Client should receive the message
	select {
	case msg := <-client.send:
		expected := "event: test-event\ndata: test data\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("GAME01ABC", testLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub)
	hub.Register(client)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub("GAME01ABC", testLogger())
	go hub.Run()
	defer hub.Close()

	// Create multiple clients
	client1 := NewClient(hub)
	client2 := NewClient(hub)
	client3 := NewClient(hub)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 3 {
		t.Errorf("ClientCount() = %d, want 3", hub.ClientCount())
	}

	// Broadcast a message
	hub.BroadcastEvent("update", "data")

	// All clients should receive the message
	for i, client := range []*Client{client1, client2, client3} {
		select {
		case msg := <-client.send:
			expected := "event: update\ndata: data\n\n"
			if string(msg) != expected {
				t.Errorf("client %d received %q, want %q", i+1, string(msg), expected)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

func newTestManager() (*HubManager, *memory.Gateway) {
	gateway := memory.New(mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	return NewHubManager(gateway, testLogger()), gateway
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager, _ := newTestManager()

	// Get or create a hub
	hub1 := manager.GetOrCreateHub("ABC123XYZ")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	// Getting again should return the same hub
	hub2 := manager.GetOrCreateHub("ABC123XYZ")
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same game")
	}

	// Different game should return different hub
	hub3 := manager.GetOrCreateHub("XYZ789QRS")
	if hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different game")
	}

	// Clean up
	manager.RemoveHub("ABC123XYZ")
	manager.RemoveHub("XYZ789QRS")
}

func TestHubManager_RelaysGatewayWrites(t *testing.T) {
	manager, gateway := newTestManager()
	gameID := model.GameID("ABC123XYZ")

	hub := manager.GetOrCreateHub(gameID)
	defer manager.RemoveHub(gameID)

	client := NewClient(hub)
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	if err := gateway.WriteSnapshot(testContext(t), gameID, model.NewSnapshot()); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	select {
	case msg := <-client.send:
		if got := string(msg); len(got) == 0 || got[:len("event: snapshot")] != "event: snapshot" {
			t.Errorf("expected snapshot event, got %q", got)
		}
		// The payload is the full game state, one JSON document per event
		payload := ""
		for _, line := range splitLines(string(msg)) {
			if len(line) > len("data: ") && line[:len("data: ")] == "data: " {
				payload += line[len("data: "):]
			}
		}
		var state struct {
			GameID     string `json:"gameId"`
			RoundLabel string `json:"roundLabel"`
		}
		if err := json.Unmarshal([]byte(payload), &state); err != nil {
			t.Fatalf("payload is not valid JSON: %v", err)
		}
		if state.GameID != string(gameID) {
			t.Errorf("payload gameId = %q, want %q", state.GameID, gameID)
		}
		if state.RoundLabel != "R1" {
			t.Errorf("payload roundLabel = %q, want R1", state.RoundLabel)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive relayed snapshot")
	}
}

func TestHubManager_GetHub(t *testing.T) {
	manager, _ := newTestManager()

	// GetHub on non-existent hub should return nil
	hub := manager.GetHub("NOTEXIST1")
	if hub != nil {
		t.Error("GetHub returned non-nil for non-existent hub")
	}

	// Create a hub then get it
	created := manager.GetOrCreateHub("ABC123XYZ")
	got := manager.GetHub("ABC123XYZ")
	if got != created {
		t.Error("GetHub returned different hub than GetOrCreateHub")
	}

	manager.RemoveHub("ABC123XYZ")
}

func TestHubManager_RemoveHub(t *testing.T) {
	manager, gateway := newTestManager()
	gameID := model.GameID("ABC123XYZ")

	hub := manager.GetOrCreateHub(gameID)
	client := NewClient(hub)
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	manager.RemoveHub(gameID)

	// Hub should be gone
	if got := manager.GetHub(gameID); got != nil {
		t.Error("Hub still exists after RemoveHub")
	}

	// The gateway subscription is detached with the hub
	if err := gateway.WriteSnapshot(testContext(t), gameID, model.NewSnapshot()); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	select {
	case msg, ok := <-client.send:
		if ok {
			t.Errorf("client received %q after hub removal", string(msg))
		}
	case <-time.After(50 * time.Millisecond):
	}

	// Removing non-existent hub should not panic
	manager.RemoveHub("NOTEXIST1")
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager, _ := newTestManager()

	// Create a hub with no clients
	manager.GetOrCreateHub("EMPTY1234")

	// Create a hub with a client
	hub2 := manager.GetOrCreateHub("ACTIVE123")
	client := NewClient(hub2)
	hub2.Register(client)
	time.Sleep(10 * time.Millisecond)

	// Cleanup empty hubs
	manager.CleanupEmptyHubs()

	// Empty hub should be gone
	if manager.GetHub("EMPTY1234") != nil {
		t.Error("Empty hub still exists after cleanup")
	}

	// Active hub should still exist
	if manager.GetHub("ACTIVE123") == nil {
		t.Error("Active hub was removed during cleanup")
	}

	manager.RemoveHub("ACTIVE123")
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
