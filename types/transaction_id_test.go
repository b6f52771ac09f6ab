package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestTransactionIDChunked(t *testing.T) {
	payer := NewAccountID(0, 0, 1001)
	base := TransactionIDWithValidStart(payer, time.Unix(1_700_000_000, 500))

	tests := []struct {
		name      string
		index     int
		wantNanos int
	}{
		{name: "chunk 0 reuses base id", index: 0, wantNanos: 500},
		{name: "chunk 1 adds one nanosecond", index: 1, wantNanos: 501},
		{name: "chunk 19 adds nineteen nanoseconds", index: 19, wantNanos: 519},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Chunked(tt.index)
			if got.ValidStart.Nanosecond() != tt.wantNanos {
				t.Errorf("Chunked(%d).ValidStart nanos = %d, want %d",
					tt.index, got.ValidStart.Nanosecond(), tt.wantNanos)
			}
			if got.AccountID.Num != payer.Num {
				t.Errorf("Chunked(%d) changed payer", tt.index)
			}
		})
	}

	// 派生是确定性的
	if !base.Chunked(5).ValidStart.Equal(base.Chunked(5).ValidStart) {
		t.Error("Chunked(5) is not deterministic")
	}
}

func TestNewTransactionIDBackdatesValidStart(t *testing.T) {
	payer := NewAccountID(0, 0, 2)
	now := time.Now()
	id := NewTransactionID(payer)

	if id.ValidStart.After(now.Add(time.Second)) {
		t.Errorf("ValidStart %v is in the future", id.ValidStart)
	}
	if now.Sub(id.ValidStart) > 6*time.Second {
		t.Errorf("ValidStart %v backdated too far", id.ValidStart)
	}
	if id.IsZero() {
		t.Error("IsZero() = true for a freshly generated id")
	}
}

func TestTransactionIDString(t *testing.T) {
	id := TransactionIDWithValidStart(NewAccountID(0, 0, 7), time.Unix(123, 456))
	if got, want := id.String(), "0.0.7@123.456"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSubmissionExhaustedErrorKeepsAttemptOrder(t *testing.T) {
	err := &SubmissionExhaustedError{
		TransactionID: "0.0.2@123.0",
		Attempts: []AttemptFailure{
			{NodeAccountID: "0.0.3", Err: errors.New("BUSY")},
			{NodeAccountID: "0.0.5", Err: errors.New("connection refused")},
			{NodeAccountID: "0.0.3", Err: errors.New("BUSY")},
		},
	}

	msg := err.Error()
	for i, node := range []string{"0.0.3", "0.0.5", "0.0.3"} {
		marker := fmt.Sprintf("attempt %d @ node %s", i+1, node)
		if !strings.Contains(msg, marker) {
			t.Errorf("Error() missing %q in %q", marker, msg)
		}
	}
	if !strings.Contains(msg, "exhausted 3 attempts") {
		t.Errorf("Error() missing attempt count in %q", msg)
	}
}
