package log

import (
	"testing"
	"time"
)

// mockLogger records events for testing
type mockLogger struct {
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.events = append(m.events, event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &mockLogger{}
	mock2 := &mockLogger{}
	mock3 := &mockLogger{}

	multi := NewMultiLogger(mock1, mock2, mock3)

	event := Event{
		Timestamp: time.Now(),
		SessionID: "sess-123",
		Direction: DirectionOut,
		Layer:     LayerTransport,
		Category:  CategoryFrame,
	}

	multi.Log(event)

	for i, mock := range []*mockLogger{mock1, mock2, mock3} {
		if len(mock.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(mock.events))
			continue
		}
		if mock.events[0].SessionID != "sess-123" {
			t.Errorf("logger %d: SessionID = %q, want %q", i, mock.events[0].SessionID, "sess-123")
		}
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	multi := NewMultiLogger()

	// Must not panic with no loggers configured
	multi.Log(Event{
		Timestamp: time.Now(),
		SessionID: "sess-123",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryFrame,
	})
}

func TestMultiLoggerPreservesOrder(t *testing.T) {
	mock := &mockLogger{}
	multi := NewMultiLogger(mock)

	for i := 0; i < 5; i++ {
		multi.Log(Event{
			Timestamp: time.Now(),
			SessionID: "sess-" + string(rune('0'+i)),
			Direction: DirectionOut,
			Layer:     LayerTransport,
			Category:  CategoryFrame,
		})
	}

	if len(mock.events) != 5 {
		t.Fatalf("got %d events, want 5", len(mock.events))
	}
	for i, e := range mock.events {
		want := "sess-" + string(rune('0'+i))
		if e.SessionID != want {
			t.Errorf("event %d: SessionID = %q, want %q", i, e.SessionID, want)
		}
	}
}
