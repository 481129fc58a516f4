package scanner

import (
	"context"
	"testing"
	"time"
)

func TestGovernorUnboundedNeverBlocks(t *testing.T) {
	g := NewGovernor(0)
	start := time.Now()
	for i := 0; i < 1000; i++ {
		if err := g.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("unbounded governor blocked for %s", elapsed)
	}
}

func TestGovernorEnforcesMinimumSpacing(t *testing.T) {
	// 50/sec -> 20ms spacing; 5 dispatches have 4 gaps -> >= 80ms.
	g := NewGovernor(50)
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := g.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("5 dispatches at 50/s took %s, want >= 80ms", elapsed)
	}
}

func TestGovernorWaitCancellable(t *testing.T) {
	g := NewGovernor(0.1) // 10s interval
	if err := g.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := g.Wait(ctx); err == nil {
		t.Error("expected error from cancelled Wait")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled Wait blocked for %s", elapsed)
	}
}
