package scanner

import (
	"context"
	"sync"
)

// PoolConfig holds options for the worker pool.
type PoolConfig struct {
	Workers int
	Pauser  *Pauser // nil = no pause support
}

// RunPool fans candidates out across a bounded worker pool and returns a
// channel of probe results in completion order. The channel is closed once
// every candidate has been processed or the context is cancelled.
func RunPool(ctx context.Context, p *Prober, candidates []string, cfg PoolConfig) <-chan ProbeResult {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	candidatesCh := make(chan string, workers*2)
	resultsCh := make(chan ProbeResult, workers*2)

	var wg sync.WaitGroup

	// Producer: feed candidates, stop promptly on cancellation.
	go func() {
		defer close(candidatesCh)
		for _, c := range candidates {
			select {
			case candidatesCh <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for candidate := range candidatesCh {
				if cfg.Pauser != nil {
					if err := cfg.Pauser.Wait(ctx); err != nil {
						return
					}
				}

				finding, err := p.Probe(ctx, candidate)
				if err != nil && ctx.Err() != nil {
					// Aborted mid-probe: report nothing partial.
					return
				}
				resultsCh <- ProbeResult{
					Candidate: candidate,
					Finding:   finding,
					Err:       err,
				}
			}
		}()
	}

	// Closer: when all workers finish, close the results channel.
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	return resultsCh
}
