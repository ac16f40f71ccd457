// Package bench provides the per-tick timing hook wrapped around system and
// command execution. Measurements accumulate during a tick and are drained
// by the observability consumer at the end of it.
package bench

import (
	"sync"
	"time"
)

// Measurement is one completed timing scope.
type Measurement struct {
	Name     string
	Duration time.Duration
}

// Recorder collects named timing scopes. Safe for concurrent use.
type Recorder struct {
	mu           sync.Mutex
	measurements []Measurement
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Begin opens a timing scope. The caller must arrange for End to run on
// every exit path, usually with defer:
//
//	defer rec.Begin("physics.gravity").End()
func (r *Recorder) Begin(name string) *Scope {
	return &Scope{recorder: r, name: name, start: time.Now()}
}

// Drain returns the measurements recorded since the last drain and clears
// the list.
func (r *Recorder) Drain() []Measurement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.measurements
	r.measurements = nil
	return out
}

func (r *Recorder) record(m Measurement) {
	r.mu.Lock()
	r.measurements = append(r.measurements, m)
	r.mu.Unlock()
}

// Scope is a live timing guard. End is idempotent; only the first call
// records.
type Scope struct {
	recorder *Recorder
	name     string
	start    time.Time
	ended    bool
	mu       sync.Mutex
}

func (s *Scope) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.recorder.record(Measurement{Name: s.name, Duration: time.Since(s.start)})
}
