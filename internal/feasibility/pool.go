package feasibility

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
)

// scoreFunc validates and prices one candidate. Pure, no shared state.
type scoreFunc func(c *domain.DesignCandidate) domain.ScoredCandidate

// ProgressFunc receives (done, total) counts as the batch advances. Called
// from worker goroutines; implementations must be safe for concurrent use.
type ProgressFunc func(done, total int)

// workerPool fans candidate scoring out across goroutines. Results keep the
// input order so downstream tie-breaking stays deterministic.
type workerPool struct {
	numWorkers int
}

func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &workerPool{numWorkers: numWorkers}
}

type scoreJob struct {
	index     int
	candidate *domain.DesignCandidate
}

type scoreResult struct {
	index  int
	scored domain.ScoredCandidate
}

// scoreBatch runs fn over all candidates. On cancellation it returns ctx.Err
// and discards in-progress results; candidates hold no external state so
// there is nothing to roll back.
func (wp *workerPool) scoreBatch(ctx context.Context, candidates []domain.DesignCandidate, fn scoreFunc, progress ProgressFunc) ([]domain.ScoredCandidate, error) {
	total := len(candidates)
	if total == 0 {
		return []domain.ScoredCandidate{}, nil
	}

	jobs := make(chan scoreJob, total)
	results := make(chan scoreResult, total)

	workers := wp.numWorkers
	if total < workers {
		workers = total
	}

	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- scoreResult{index: job.index, scored: fn(job.candidate)}
				if progress != nil {
					progress(int(done.Add(1)), total)
				}
			}
		}()
	}

	for i := range candidates {
		jobs <- scoreJob{index: i, candidate: &candidates[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := make([]domain.ScoredCandidate, total)
	for r := range results {
		scored[r.index] = r.scored
	}
	return scored, nil
}
