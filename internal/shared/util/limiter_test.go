package util

import (
	"context"
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	l := NewLimiter(10, 2)

	if !l.Allow(1) {
		t.Error("expected first token to be allowed")
	}
	if !l.Allow(1) {
		t.Error("expected second token to be allowed (burst)")
	}
	if l.Allow(1) {
		t.Error("expected third token to be rejected (burst exhausted)")
	}

	time.Sleep(150 * time.Millisecond)
	if !l.Allow(1) {
		t.Error("expected token to be refilled after wait")
	}
}

func TestLimiter_NonPositiveRateIsUnlimited(t *testing.T) {
	l := NewLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow(1) {
			t.Fatalf("expected unlimited limiter to allow event %d", i)
		}
	}
}

func TestLimiter_Wait(t *testing.T) {
	l := NewLimiter(100, 1)
	l.Allow(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := l.Wait(ctx, 1); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Error("Wait returned too early")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.Allow(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx, 1); err == nil {
		t.Fatal("expected cancelled wait to fail")
	}
}

func TestLimiterRegistry(t *testing.T) {
	reg := NewLimiterRegistry(100, 10, time.Hour)
	defer reg.Close()

	l1 := reg.Get("10.0.0.1")
	l2 := reg.Get("10.0.0.2")
	if l1 == l2 {
		t.Error("expected different limiters for different keys")
	}
	if reg.Get("10.0.0.1") != l1 {
		t.Error("expected same limiter for same key")
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", reg.Len())
	}

	reg.cleanup(time.Now().Add(2 * time.Hour))
	if reg.Len() != 0 {
		t.Fatalf("expected idle keys to be dropped, got %d", reg.Len())
	}
	if reg.Get("10.0.0.1") == l1 {
		t.Error("expected a fresh limiter after cleanup")
	}
	reg.Close()
}
