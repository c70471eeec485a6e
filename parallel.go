package partfile

import (
	"fmt"
	"runtime"
	"sync"
)

// ParallelConfig controls parallel chunk reads during materialization.
type ParallelConfig struct {
	// Enabled enables parallel chunk reads.
	Enabled bool

	// MaxWorkers is the maximum number of worker goroutines. If 0, defaults
	// to runtime.NumCPU().
	MaxWorkers int

	// MinChunksForParallel is the minimum number of chunks before parallel
	// reads are used; below this, sequential reads are cheaper than the
	// goroutine setup cost.
	MinChunksForParallel int
}

// DefaultParallelConfig returns the default parallel-read configuration.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		Enabled:              true,
		MaxWorkers:           runtime.NumCPU(),
		MinChunksForParallel: 4,
	}
}

// chunkReadJob is one logical chunk to fetch from the container during
// create(): its ordinal and physical offset are already resolved by the
// caller, so workers only do the positional read.
type chunkReadJob struct {
	id      int32
	offset  int64
	payload []byte // pre-sized by the caller; filled in by the worker
	err     error
}

// readChunksParallel fills in jobs[i].payload by reading jobs[i].offset
// through pf.read, using up to cfg.MaxWorkers goroutines when there are
// enough jobs to make that worthwhile. Sequential order of jobs is
// preserved in the slice regardless of which worker serviced which index,
// so the caller can write them out in logical id order afterward.
func readChunksParallel(read *readHandle, jobs []chunkReadJob, cfg ParallelConfig) error {
	if len(jobs) == 0 {
		return nil
	}

	if !cfg.Enabled || len(jobs) < cfg.MinChunksForParallel {
		for i := range jobs {
			if _, err := read.ReadAt(jobs[i].payload, jobs[i].offset); err != nil {
				return err
			}
		}
		return nil
	}

	numWorkers := cfg.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	var wg sync.WaitGroup
	jobChan := make(chan int, len(jobs))
	errChan := make(chan error, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					select {
					case errChan <- fmt.Errorf("partfile: panic in chunk read worker: %v", r):
					default:
					}
				}
			}()
			for idx := range jobChan {
				if _, err := read.ReadAt(jobs[idx].payload, jobs[idx].offset); err != nil {
					select {
					case errChan <- err:
					default:
					}
					return
				}
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)
	wg.Wait()
	close(errChan)

	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}
