package optimization

import (
	"context"
	"runtime"
	"sync"
)

// Pool runs independent indexed jobs over a bounded set of workers.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given concurrency; non-positive
// values default to the number of CPUs.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Run invokes fn for every index in [0, jobs), at most workers at a
// time, and blocks until all dispatched jobs finish. When the context
// is cancelled no further jobs are dispatched and the context error is
// returned.
func (p *Pool) Run(ctx context.Context, jobs int, fn func(i int)) error {
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				fn(i)
			}
		}()
	}

	var err error
dispatch:
	for i := 0; i < jobs; i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	return err
}
