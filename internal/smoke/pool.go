package smoke

import (
	"context"
	"sync"
	"sync/atomic"
)

// workerChannelMultiplier sizes the job channel relative to the pool.
const workerChannelMultiplier = 2

// forEach runs fn for every index in [0, n) on workers goroutines and
// returns how many calls failed. It stops handing out work once ctx ends.
func forEach(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) int {
	if workers < 1 {
		workers = 1
	}
	var failed atomic.Int64
	jobs := make(chan int, workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					failed.Add(1)
					continue
				}
				if err := fn(ctx, i); err != nil {
					failed.Add(1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				failed.Add(int64(n - i))
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return int(failed.Load())
}
