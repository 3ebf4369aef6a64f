package parallel

// BuildLevels splits a batch into execution levels. Every level is a
// contiguous run of message indices whose access sets are pairwise
// non-conflicting, so flattening the result yields 0..n-1 in order and a
// level's writes can be merged serially in index order.
//
// A run is extended while the next message does not conflict with the union
// of the run's accesses. Conflicting with the union is the same as
// conflicting with some member, so each message is checked once.
func BuildLevels(accessSets []AccessSet) [][]int {
	if len(accessSets) == 0 {
		return nil
	}
	var (
		levels [][]int
		run    []int
		seen   AccessSet
	)
	for i := range accessSets {
		if len(run) > 0 && accessSets[i].Conflicts(&seen) {
			levels = append(levels, run)
			run = nil
		}
		if len(run) == 0 {
			seen = NewAccessSet(nil, nil)
		}
		run = append(run, i)
		seen.absorb(&accessSets[i])
	}
	return append(levels, run)
}
