package orchestrator

import (
	"context"
	"sync"
)

// Job is one scenario execution scheduled on the pool.
type Job func(ctx context.Context) error

// RunPool executes jobs with at most maxWorkers running concurrently.
// Once ctx is cancelled no further jobs are dispatched; jobs already
// running are left to observe the cancellation themselves. All job
// errors are collected and returned together.
func RunPool(ctx context.Context, maxWorkers int, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	sem := make(chan struct{}, maxWorkers)

	for _, job := range jobs {
		if ctx.Err() != nil {
			mu.Lock()
			errs = append(errs, ctx.Err())
			mu.Unlock()
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := j(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(job)
	}
	wg.Wait()
	return errs
}
