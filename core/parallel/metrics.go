package parallel

import "sync/atomic"

var (
	batchCounter   atomic.Uint64
	levelCounter   atomic.Uint64
	messageCounter atomic.Uint64
	failedCounter  atomic.Uint64
	barrierCounter atomic.Uint64
)

// Stats is a snapshot of the executor counters since process start.
type Stats struct {
	Batches  uint64 `json:"batches"`
	Levels   uint64 `json:"levels"`
	Messages uint64 `json:"messages"`
	Failed   uint64 `json:"failed"`
	Barriers uint64 `json:"barriers"`
}

// ReadStats returns the current counters.
func ReadStats() Stats {
	return Stats{
		Batches:  batchCounter.Load(),
		Levels:   levelCounter.Load(),
		Messages: messageCounter.Load(),
		Failed:   failedCounter.Load(),
		Barriers: barrierCounter.Load(),
	}
}
