package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestBackoffForGrowsAndCaps(t *testing.T) {
	policy := DefaultRetryPolicy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: 250 * time.Millisecond},
		{attempt: 1, want: 500 * time.Millisecond},
		{attempt: 2, want: 1 * time.Second},
		{attempt: 3, want: 2 * time.Second},
		{attempt: 4, want: 4 * time.Second},
		{attempt: 5, want: 8 * time.Second},
		// 上限之后不再增长
		{attempt: 6, want: 8 * time.Second},
		{attempt: 20, want: 8 * time.Second},
	}

	for _, tt := range tests {
		if got := policy.BackoffFor(tt.attempt); got != tt.want {
			t.Errorf("BackoffFor(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDefaultRetryPolicyValues(t *testing.T) {
	policy := DefaultRetryPolicy()
	if policy.MaxAttempts != 10 {
		t.Errorf("MaxAttempts = %d, want 10", policy.MaxAttempts)
	}
	if policy.MinBackoff != 250*time.Millisecond {
		t.Errorf("MinBackoff = %v, want 250ms", policy.MinBackoff)
	}
	if policy.MaxBackoff != 8*time.Second {
		t.Errorf("MaxBackoff = %v, want 8s", policy.MaxBackoff)
	}
}

func TestIsRetryableTransport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "grpc unavailable", err: status.Error(codes.Unavailable, "connection refused"), want: true},
		{name: "grpc resource exhausted", err: status.Error(codes.ResourceExhausted, "throttled"), want: true},
		{name: "grpc deadline exceeded", err: status.Error(codes.DeadlineExceeded, "timeout"), want: true},
		{name: "grpc invalid argument", err: status.Error(codes.InvalidArgument, "bad request"), want: false},
		{name: "grpc unimplemented", err: status.Error(codes.Unimplemented, "no such method"), want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "context deadline", err: context.DeadlineExceeded, want: true},
		{name: "plain error", err: errors.New("something else"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableTransport(tt.err); got != tt.want {
				t.Errorf("IsRetryableTransport(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWaitRespectsContext(t *testing.T) {
	policy := DefaultRetryPolicy()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := policy.Wait(ctx, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}
