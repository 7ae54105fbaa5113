package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"idledger/internal/log"
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
		{-1, 1 * time.Second},
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
		{"EOF error", errors.New("unexpected EOF"), true},
		{"broken pipe error", errors.New("write: broken pipe"), true},
		{"closed channel", amqp091.ErrClosed, true},
		{"wrapped closed channel", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"recoverable amqp error", &amqp091.Error{Code: 320, Reason: "forced", Recover: true}, true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func testClient() *Client {
	return &Client{
		exchangeName: "idledger",
		queueName:    "idledger_changes",
		logger:       log.Discard(),
		sleep:        func(context.Context, time.Duration) error { return nil },
	}
}

func TestWithRetry_NonConnectionErrorIsNotRetried(t *testing.T) {
	c := testClient()
	calls := 0
	err := c.withRetry(context.Background(), func() error {
		calls++
		return errors.New("406 PRECONDITION_FAILED")
	}, func() { t.Fatal("onSuccess must not run") })

	if err == nil || !strings.Contains(err.Error(), "PRECONDITION_FAILED") {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestWithRetry_StopsWhenContextDone(t *testing.T) {
	c := testClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.sleep = sleepContext

	calls := 0
	err := c.withRetry(ctx, func() error {
		calls++
		return amqp091.ErrClosed
	}, func() {})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestWithRetry_Success(t *testing.T) {
	c := testClient()
	succeeded := false
	if err := c.withRetry(context.Background(), func() error { return nil }, func() { succeeded = true }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !succeeded {
		t.Fatal("onSuccess not called")
	}
}

func TestPublishWithoutChannel(t *testing.T) {
	c := testClient()
	if err := c.publish(context.Background(), []byte("{}")); !errors.Is(err, amqp091.ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestNewChangeEvent(t *testing.T) {
	before := time.Now().UTC()
	msg := NewChangeEvent("id_records", "bulk_update", []string{"1", "2"})

	if msg.ID == uuid.Nil {
		t.Error("expected a generated id")
	}
	if msg.Collection != "id_records" || msg.Op != "bulk_update" || len(msg.IDs) != 2 {
		t.Errorf("unexpected event: %+v", msg)
	}
	if msg.Timestamp.Before(before) {
		t.Errorf("timestamp %v before %v", msg.Timestamp, before)
	}
}

func TestChangeEvent_JSON(t *testing.T) {
	original := NewChangeEvent("id_expenses", "create", []string{"1710498600000"})

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(string(data), `"collection":"id_expenses"`) {
		t.Errorf("unexpected JSON: %s", data)
	}

	decoded, err := ChangeEventFromJSON(data)
	if err != nil {
		t.Fatalf("ChangeEventFromJSON() error = %v", err)
	}
	if decoded.ID != original.ID || decoded.IDs[0] != "1710498600000" {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestChangeEvent_InvalidJSON(t *testing.T) {
	for _, body := range []string{`{invalid json}`, `{"collection":"id_records"}`, `{"id":"` + uuid.NewString() + `"}`} {
		if _, err := ChangeEventFromJSON([]byte(body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}
