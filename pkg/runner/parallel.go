package runner

import (
	"context"
	"sync"
	"time"
)

// runParallel executes cases concurrently with a semaphore
// limiting maxConcurrency goroutines. Results are returned in
// the same order as the input cases. Every finished case sends
// on progress.
func runParallel(
	ctx context.Context,
	r *Runner,
	cases []Case,
	progress chan<- struct{},
) []Result {
	sem := make(chan struct{}, r.maxConcurrency)
	results := make([]Result, len(cases))

	var wg sync.WaitGroup

	for i, c := range cases {
		wg.Add(1)
		go func(idx int, c Case) {
			defer wg.Done()
			defer func() { progress <- struct{}{} }()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = Result{Index: idx, Err: ctx.Err()}
				return
			}

			// A slot may be won after cancellation when both are ready.
			if err := ctx.Err(); err != nil {
				results[idx] = Result{Index: idx, Err: err}
				return
			}

			start := time.Now()
			err := r.execute(ctx, c)
			results[idx] = Result{
				Index:    idx,
				Err:      err,
				Duration: time.Since(start),
			}
		}(i, c)
	}

	wg.Wait()
	return results
}
