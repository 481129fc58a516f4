package scanner

import (
	"context"
	"sync"
)

// Pauser is a cooperative pause gate for probe loops. While paused, Wait
// blocks until resumed or the context is cancelled; otherwise it returns
// immediately.
type Pauser struct {
	mu     sync.Mutex
	paused bool
	gate   chan struct{} // closed while running
}

// NewPauser creates a Pauser in the running state.
func NewPauser() *Pauser {
	gate := make(chan struct{})
	close(gate)
	return &Pauser{gate: gate}
}

// Wait blocks the caller while paused. It returns the context error when
// cancelled mid-pause, nil otherwise.
func (p *Pauser) Wait(ctx context.Context) error {
	for {
		p.mu.Lock()
		if !p.paused {
			p.mu.Unlock()
			return nil
		}
		gate := p.gate
		p.mu.Unlock()

		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Toggle flips between paused and running and returns the new state
// (true = now paused).
func (p *Pauser) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = !p.paused
	if p.paused {
		p.gate = make(chan struct{})
	} else {
		close(p.gate)
	}
	return p.paused
}

// IsPaused reports whether the gate is currently closed.
func (p *Pauser) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}
