// Package parallel implements level-based parallel execution of operation
// batches. Every handler reports a static access list, so access sets are
// fully known before execution and no optimistic re-execution is needed.
package parallel

import (
	"runtime"

	"github.com/otakuverse/ovchain/log"
	"github.com/otakuverse/ovchain/state"
	"golang.org/x/sync/errgroup"
)

// ApplyFn executes message idx against db and returns its application error.
// A non-nil error drops everything the message wrote to db.
type ApplyFn func(idx int, db state.RecordDB) error

// parallelThreshold is the minimum level width for spawning goroutines.
const parallelThreshold = 2

// Execute runs the messages described by accessSets level by level. Messages
// within a level run concurrently, each on its own WriteBuf over statedb;
// the overlays of successful messages are merged serially in index order.
// workers bounds the goroutines per level; zero means GOMAXPROCS.
//
// It returns the application error of every message, indexed like
// accessSets.
func Execute(statedb state.RecordDB, accessSets []AccessSet, workers int, apply ApplyFn) []error {
	n := len(accessSets)
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	levels := BuildLevels(accessSets)

	errs := make([]error, n)
	bufs := make([]*WriteBuf, n)
	for _, level := range levels {
		for _, idx := range level {
			bufs[idx] = NewWriteBuf(statedb)
		}
		if len(level) < parallelThreshold {
			for _, idx := range level {
				errs[idx] = apply(idx, bufs[idx])
			}
		} else {
			var g errgroup.Group
			g.SetLimit(workers)
			for _, idx := range level {
				idx := idx
				g.Go(func() error {
					errs[idx] = apply(idx, bufs[idx])
					return nil
				})
			}
			g.Wait()
		}

		// Serial merge: deterministic index order.
		for _, idx := range sortedInts(level) {
			if errs[idx] == nil {
				bufs[idx].Merge(statedb)
			} else {
				failedCounter.Add(1)
			}
			bufs[idx] = nil
		}
	}

	for i := range accessSets {
		if accessSets[i].Barrier {
			barrierCounter.Add(1)
		}
	}
	batchCounter.Add(1)
	levelCounter.Add(uint64(len(levels)))
	messageCounter.Add(uint64(n))
	log.Debug("Executed batch", "messages", n, "levels", len(levels), "workers", workers)
	return errs
}

// sortedInts returns a copy of s sorted in ascending order using insertion sort.
// Level slices are small so this is efficient enough.
func sortedInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	for i := 1; i < len(out); i++ {
		key := out[i]
		j := i - 1
		for j >= 0 && out[j] > key {
			out[j+1] = out[j]
			j--
		}
		out[j+1] = key
	}
	return out
}
