package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesTokens(t *testing.T) {
	l := New()
	if !l.Allow("host", 2, 0) {
		t.Fatalf("first token expected")
	}
	if !l.Allow("host", 2, 0) {
		t.Fatalf("second token expected")
	}
	if l.Allow("host", 2, 0) {
		t.Fatalf("bucket should be empty")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	// drain
	l.Allow("host", 1, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "host", 1, 0); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestWaitRefills(t *testing.T) {
	l := New()
	l.Allow("host", 1, 20) // drain, refill 20/s

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := l.Wait(ctx, "host", 1, 20); err != nil {
		t.Fatalf("expected refill before deadline: %v", err)
	}
}
