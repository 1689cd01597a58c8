package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eleven-am/cascade-detect/internal/detect"
	"github.com/google/uuid"
)

var ErrInvalidTransition = errors.New("invalid job transition")

type State string

const (
	StateReceived  State = "received"
	StateDecoded   State = "decoded"
	StateDetected  State = "detected"
	StateAnnotated State = "annotated"
	StateEncoded   State = "encoded"
	StateResponded State = "responded"
	StateErrored   State = "errored"
)

var stateOrder = map[State]int{
	StateReceived:  0,
	StateDecoded:   1,
	StateDetected:  2,
	StateAnnotated: 3,
	StateEncoded:   4,
	StateResponded: 5,
}

func (s State) Terminal() bool {
	return s == StateResponded || s == StateErrored
}

type cleanup struct {
	name string
	fn   func() error
}

// Job is the working state of one request. Cleanups registered on it run
// exactly once, in reverse order, when the job reaches a terminal state.
type Job struct {
	ID       string
	Category detect.Category

	mu       sync.Mutex
	state    State
	cleanups []cleanup
	degraded bool
	logger   *slog.Logger
}

func NewJob(cat detect.Category, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Job{
		ID:       id,
		Category: cat,
		state:    StateReceived,
		logger:   logger.With("job_id", id, "category", string(cat)),
	}
}

func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Advance moves the job forward. Stages may be skipped but never revisited.
func (j *Job) Advance(next State) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Terminal() {
		return fmt.Errorf("%w: job already %s", ErrInvalidTransition, j.state)
	}
	to, ok := stateOrder[next]
	if !ok || next == StateResponded || to <= stateOrder[j.state] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.state, next)
	}
	j.state = next
	return nil
}

func (j *Job) OnCleanup(name string, fn func() error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cleanups = append(j.cleanups, cleanup{name: name, fn: fn})
}

// Fail moves the job to Errored and releases everything registered so far.
// It returns err unchanged so callers can write `return job.Fail(err)`.
func (j *Job) Fail(err error) error {
	if j.terminate(StateErrored) {
		j.logger.Debug("job errored", "error", err)
	}
	return err
}

// Finish marks the response as sent and releases the job's artifacts.
func (j *Job) Finish() {
	if j.terminate(StateResponded) {
		j.logger.Debug("job responded")
	}
}

func (j *Job) terminate(final State) bool {
	j.mu.Lock()
	if j.state.Terminal() {
		j.mu.Unlock()
		return false
	}
	j.state = final
	pending := j.cleanups
	j.cleanups = nil
	j.mu.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		if err := pending[i].fn(); err != nil {
			j.logger.Warn("cleanup failed", "artifact", pending[i].name, "error", err)
		}
	}
	return true
}

// markDegraded reports whether this is the first degraded detection of the job.
func (j *Job) markDegraded() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	first := !j.degraded
	j.degraded = true
	return first
}
