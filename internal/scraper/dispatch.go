package scraper

import (
	"context"
	"log/slog"
	"sync"
)

// chunkBounds splits n items into at most workers contiguous, roughly
// equal ranges in original order. Chunk i is items[bounds[i][0]:bounds[i][1]].
func chunkBounds(n, workers int) [][2]int {
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	bounds := make([][2]int, 0, workers)
	base := n / workers
	extra := n % workers

	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < extra {
			size++
		}
		bounds = append(bounds, [2]int{start, start + size})
		start += size
	}
	return bounds
}

// ChunkWorker processes one contiguous chunk of the work list, appending
// results strictly in chunk order. Within-chunk ordering is an invariant
// the worker must uphold, not an accident.
type ChunkWorker[T, R any] func(ctx context.Context, workerID int, chunk []T) []R

// Distribute fans a work list out over at most `workers` concurrent
// chunk workers and concatenates the per-chunk results by chunk index, so
// the final output preserves the original relative order regardless of
// which worker finishes first. A worker panic yields an empty chunk
// rather than aborting its siblings.
func Distribute[T, R any](ctx context.Context, items []T, workers int, fn ChunkWorker[T, R], logger *slog.Logger) []R {
	if len(items) == 0 {
		return nil
	}

	bounds := chunkBounds(len(items), workers)
	chunkResults := make([][]R, len(bounds))

	var wg sync.WaitGroup
	for i, b := range bounds {
		wg.Add(1)
		go func(idx int, start, end int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("worker panicked, dropping its chunk", "worker", idx, "panic", r)
					chunkResults[idx] = nil
				}
			}()

			logger.Info("worker started", "worker", idx, "items", end-start)
			chunkResults[idx] = fn(ctx, idx, items[start:end])
			logger.Info("worker finished", "worker", idx, "results", len(chunkResults[idx]))
		}(i, b[0], b[1])
	}
	wg.Wait()

	var out []R
	for _, results := range chunkResults {
		out = append(out, results...)
	}
	return out
}
