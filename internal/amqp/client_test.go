package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"khata/internal/core"
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
		{63, 30 * time.Second}, // shift overflow capped
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
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"channel closed", errors.New("message channel closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"unrelated", errors.New("invalid payload"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestNotificationMessageRoundTrip(t *testing.T) {
	change := core.BalanceChange{
		Owner:    "user-1",
		Kind:     core.Debit,
		Amount:   core.Money{Paise: 30000},
		Previous: core.Money{Paise: 100000},
		Current:  core.Money{Paise: 70000},
		At:       time.Now().UTC(),
	}
	msg := NewExpenseRecordedMessage("Food", change)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := NotificationMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != NotificationExpenseRecorded || got.Category != "Food" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if got.AmountPaise != 30000 || got.PreviousPaise != 100000 || got.CurrentPaise != 70000 {
		t.Fatalf("amounts lost in transit: %+v", got)
	}
}

func TestNotificationMessageFromJSONInvalid(t *testing.T) {
	if _, err := NotificationMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}
