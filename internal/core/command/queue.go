package command

import (
	"fmt"
	"sync"

	"github.com/tempestsim/tempest/internal/core/observability/log"
)

// ExecutionError captures one failed command invocation. Failures are
// collected rather than returned because command submission is
// fire-and-forget; consumers poll them off the queue.
type ExecutionError struct {
	CommandName string
	Payload     Payload
	Err         error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.CommandName, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

type queued struct {
	cmd     Command
	payload Payload
}

// Queue is the per-container FIFO of pending command invocations.
//
// Enqueue is safe under concurrent producers; the only cross-producer
// guarantee is that no entry is lost. Draining is expected to happen on the
// single tick thread, but is synchronized anyway so administrative callers
// cannot corrupt the queue.
type Queue struct {
	mu      sync.Mutex
	pending []queued
	failed  []*ExecutionError

	log log.Log
}

func NewQueue(logger log.Log) *Queue {
	return &Queue{log: logger}
}

// Enqueue appends an invocation to the tail. A nil command is silently
// dropped; a nil payload is enqueued as-is.
func (q *Queue) Enqueue(cmd Command, payload Payload) {
	if cmd == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, queued{cmd: cmd, payload: payload})
	q.mu.Unlock()
}

// ExecuteCommands drains and runs up to n of the oldest entries in FIFO
// order, returning how many ran. n <= 0 runs nothing; n larger than the
// queue drains it completely. A failing handler (error or panic) is captured
// into the error queue and never blocks the rest of the batch.
func (q *Queue) ExecuteCommands(n int) int {
	if n <= 0 {
		return 0
	}

	q.mu.Lock()
	if n > len(q.pending) {
		n = len(q.pending)
	}
	batch := q.pending[:n]
	q.pending = q.pending[n:]
	q.mu.Unlock()

	for _, entry := range batch {
		if err := q.execute(entry); err != nil {
			q.mu.Lock()
			q.failed = append(q.failed, &ExecutionError{
				CommandName: entry.cmd.Name(),
				Payload:     entry.payload,
				Err:         err,
			})
			q.mu.Unlock()
			q.log.Warn("command failed",
				log.String("command", entry.cmd.Name()),
				log.Err(err))
		}
	}
	return len(batch)
}

func (q *Queue) execute(entry queued) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return entry.cmd.Execute(entry.payload)
}

// Errors returns and clears the accumulated failures. Consume-once: a second
// call with no new failures returns nil.
func (q *Queue) Errors() []*ExecutionError {
	q.mu.Lock()
	defer q.mu.Unlock()
	errs := q.failed
	q.failed = nil
	return errs
}

// ClearErrors discards accumulated failures without returning them.
func (q *Queue) ClearErrors() {
	q.mu.Lock()
	q.failed = nil
	q.mu.Unlock()
}

// Size returns the number of pending invocations.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Clear removes all pending invocations without executing them.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()
}
