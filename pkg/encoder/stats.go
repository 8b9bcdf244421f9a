package encoder

import "sync/atomic"

// Stats is a snapshot of element counters.
type Stats struct {
	Submitted   int64 // SubmitFrame calls that reached the session
	Queued      int64 // tasks pushed to the exec queue
	MoreData    int64 // submissions answered with more-data
	BusyRetries int64
	Completed   int64 // units forwarded downstream
	Failed      int64 // units whose completion reported an error
	Empty       int64 // completions without payload
	Bytes       int64
	ZeroCopy    int64
	Copied      int64
	LocalAllocs int64 // output buffers not served by the downstream pool
	Stranded    int
	PoolSize    int
	Generation  uint64
}

type counters struct {
	submitted   atomic.Int64
	queued      atomic.Int64
	moreData    atomic.Int64
	busyRetries atomic.Int64
	completed   atomic.Int64
	failed      atomic.Int64
	empty       atomic.Int64
	bytes       atomic.Int64
	zeroCopy    atomic.Int64
	copied      atomic.Int64
	localAllocs atomic.Int64
	stranded    atomic.Int64
	poolSize    atomic.Int64
}

// Stats returns the current counters. It never blocks on the submission path.
func (e *Element) Stats() Stats {
	return Stats{
		Submitted:   e.stats.submitted.Load(),
		Queued:      e.stats.queued.Load(),
		MoreData:    e.stats.moreData.Load(),
		BusyRetries: e.stats.busyRetries.Load(),
		Completed:   e.stats.completed.Load(),
		Failed:      e.stats.failed.Load(),
		Empty:       e.stats.empty.Load(),
		Bytes:       e.stats.bytes.Load(),
		ZeroCopy:    e.stats.zeroCopy.Load(),
		Copied:      e.stats.copied.Load(),
		LocalAllocs: e.stats.localAllocs.Load(),
		Stranded:    int(e.stats.stranded.Load()),
		PoolSize:    int(e.stats.poolSize.Load()),
		Generation:  e.gen.Load(),
	}
}
