package events

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{63, 30 * time.Second}, // shift overflow degrades to the cap
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5672: connection refused"),
			expected: true,
		},
		{
			name:     "connection reset",
			err:      errors.New("read: connection reset by peer"),
			expected: true,
		},
		{
			name:     "amqp closed",
			err:      amqp091.ErrClosed,
			expected: true,
		},
		{
			name:     "wrapped amqp closed",
			err:      fmt.Errorf("publish message: %w", amqp091.ErrClosed),
			expected: true,
		},
		{
			name:     "channel not open",
			err:      errors.New("Exception (504) Reason: \"channel/connection is not open\""),
			expected: true,
		},
		{
			name:     "protocol error",
			err:      errors.New("PRECONDITION_FAILED - parameters changed"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRecordChangeJSON(t *testing.T) {
	msg := NewRecordChange("ledger", "account", 42, ActionUpdated)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := RecordChangeFromJSON(data)
	if err != nil {
		t.Fatalf("RecordChangeFromJSON: %v", err)
	}

	if got.Profile != "ledger" || got.Entity != "account" || got.ID != 42 || got.Action != ActionUpdated {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp lost in round trip")
	}
}

func TestRecordChangeFromJSON_Malformed(t *testing.T) {
	if _, err := RecordChangeFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
