package container

import (
	"sync"
	"time"
)

// TickMetrics aggregates tick durations over the container's lifetime.
type TickMetrics struct {
	Last  time.Duration
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
	Count int64
}

type metricsRecorder struct {
	mu    sync.Mutex
	total time.Duration
	cur   TickMetrics
}

func (r *metricsRecorder) record(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cur.Last = d
	r.cur.Count++
	r.total += d
	r.cur.Avg = r.total / time.Duration(r.cur.Count)
	if r.cur.Count == 1 || d < r.cur.Min {
		r.cur.Min = d
	}
	if d > r.cur.Max {
		r.cur.Max = d
	}
}

func (r *metricsRecorder) snapshot() TickMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cur
}
