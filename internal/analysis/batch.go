package analysis

import (
	"context"
	"runtime"
	"sync"
)

// WorkItem holds one request queued for analysis.
type WorkItem struct {
	Seq     int
	Request Request
}

// WorkResult holds the analysis output for a single request.
type WorkResult struct {
	Seq    int
	Result *Result
	Err    error
}

// ParallelAnalyze analyzes work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (s *Service) ParallelAnalyze(ctx context.Context, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				res, err := s.Analyze(ctx, item.Request)
				results <- WorkResult{Seq: item.Seq, Result: res, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// AnalyzeBatch analyzes several requests concurrently and returns one
// WorkResult per request, in request order. Per-request failures are
// reported in WorkResult.Err. If ctx is cancelled, only ctx's error is
// returned.
func (s *Service) AnalyzeBatch(ctx context.Context, reqs []Request) ([]WorkResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, max(len(reqs), 1))

	items := make(chan WorkItem)
	go func() {
		defer close(items)
		for i, r := range reqs {
			select {
			case items <- WorkItem{Seq: i, Request: r}:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make([]WorkResult, 0, len(reqs))
	err := OrderedCollect(s.ParallelAnalyze(ctx, items, workers), func(r WorkResult) error {
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
