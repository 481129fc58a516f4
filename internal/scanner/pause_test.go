package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPauserWaitPassesWhenRunning(t *testing.T) {
	p := NewPauser()
	done := make(chan struct{})
	go func() {
		_ = p.Wait(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked while running")
	}
}

func TestPauserToggleBlocksAndReleases(t *testing.T) {
	p := NewPauser()
	if !p.Toggle() {
		t.Fatal("first Toggle should pause")
	}
	if !p.IsPaused() {
		t.Fatal("expected paused state")
	}

	var wg sync.WaitGroup
	released := make(chan struct{})
	wg.Add(3)
	for i := 0; i < 3; i++ {
		go func() {
			defer wg.Done()
			_ = p.Wait(context.Background())
		}()
	}
	go func() {
		wg.Wait()
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("Wait returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	if p.Toggle() {
		t.Fatal("second Toggle should resume")
	}
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("waiters not released on resume")
	}
}

func TestPauserWaitReturnsOnCancelWhilePaused(t *testing.T) {
	p := NewPauser()
	p.Toggle()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Wait(ctx)
	}()

	select {
	case <-errCh:
		t.Fatal("Wait returned while paused with a live context")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Wait error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait still blocked after cancellation")
	}
}
