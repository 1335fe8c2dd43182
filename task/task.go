package task

import (
	"context"
	"sync"
	"time"

	"github.com/gantrydev/gantry/outcome"
)

// Task is a runtime instance of a Definition. It carries the current
// lifecycle state, attempt count, timings, the most recent execute
// outcome, and its sub-tasks. All mutation is serialized on a per-task
// mutex so the state machine's tie-break rules stay deterministic.
type Task struct {
	mu sync.Mutex

	name    string
	def     *Definition
	factory *Factory

	state    State
	attempts int
	began    *time.Time
	ended    *time.Time
	result   any
	err      error

	out        outcome.Outcome
	hasOutcome bool

	done        *outcome.Future
	resolutions []outcome.Outcome

	subs   []*Task
	parent *Task

	frozen        bool
	finalised     bool
	reconstructed bool
}

// Name returns the task's name.
func (t *Task) Name() string { return t.name }

// Definition returns the definition the task was created from, nil for
// reconstructed tasks with no definition supplied.
func (t *Task) Definition() *Definition { return t.def }

// Factory returns the factory that produced the task.
func (t *Task) Factory() *Factory { return t.factory }

// Parent returns the parent task, nil for roots.
func (t *Task) Parent() *Task { return t.parent }

// State returns the current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Boolean projections of the current state.
func (t *Task) Unstarted() bool { return t.State().IsUnstarted() }
func (t *Task) Started() bool   { return t.State().IsStarted() }
func (t *Task) Completed() bool { return t.State().IsCompleted() }
func (t *Task) TimedOut() bool  { return t.State().IsTimedOut() }
func (t *Task) Failed() bool    { return t.State().IsFailed() }
func (t *Task) Rejected() bool  { return t.State().IsRejected() }

// Terminal reports whether the current state is terminal.
func (t *Task) Terminal() bool { return t.State().Terminal() }

// Attempts returns the number of execute invocations recorded.
func (t *Task) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

// Began returns when the first execute transitioned the task to Started,
// nil if never started.
func (t *Task) Began() *time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.began
}

// Ended returns when the task reached a terminal state, nil while
// non-terminal.
func (t *Task) Ended() *time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ended
}

// Result returns the completion value, nil unless the task completed.
func (t *Task) Result() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Err returns the live error for the current attempt, nil when none.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Outcome returns the Try recorded by the most recent Execute. The
// boolean is false before the first invocation.
func (t *Task) Outcome() (outcome.Outcome, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out, t.hasOutcome
}

// Done returns the future that settles once all awaitables and sub-tasks
// of the most recent Execute have settled. Nil before the first
// invocation.
func (t *Task) Done() *outcome.Future {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Resolutions returns the ordered per-awaitable outcomes of the most
// recent Execute. Valid once Done has settled.
func (t *Task) Resolutions() []outcome.Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	res := make([]outcome.Outcome, len(t.resolutions))
	copy(res, t.resolutions)
	return res
}

// Await blocks until Done settles or ctx is done. When ctx carries no
// deadline and the factory configures a done timeout, that timeout
// applies. Returns the resolutions list.
func (t *Task) Await(ctx context.Context) ([]outcome.Outcome, error) {
	done := t.Done()
	if done == nil {
		return nil, newInvalidState("task %q has not been executed", t.name)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.factory != nil && t.factory.opts.DoneTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.factory.opts.DoneTimeout)
		defer cancel()
	}
	if _, err := done.Await(ctx); err != nil {
		return nil, err
	}
	return t.Resolutions(), nil
}

// SubTasks returns the ordered child tasks.
func (t *Task) SubTasks() []*Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := make([]*Task, len(t.subs))
	copy(subs, t.subs)
	return subs
}

// Sub returns the direct child with the given name, or nil.
func (t *Task) Sub(name string) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, sub := range t.subs {
		if sub.name == name {
			return sub
		}
	}
	return nil
}

// Frozen reports whether the task has been frozen.
func (t *Task) Frozen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frozen
}

// Finalised reports whether the task has been finalised.
func (t *Task) Finalised() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finalised
}

// Reconstructed reports whether the task was rebuilt from a serialized
// snapshot rather than created from a definition.
func (t *Task) Reconstructed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reconstructed
}

// sealedErr returns the domain error for a mutating call on a sealed
// task, nil when mutation is allowed. Caller holds t.mu.
func (t *Task) sealedErr() error {
	if t.finalised {
		return NewFinalisedError("task "+t.name+" is finalised", nil)
	}
	if t.frozen {
		return NewFrozenError("task "+t.name+" is frozen", nil)
	}
	return nil
}

func (t *Task) stampEnded() {
	now := time.Now().UTC()
	t.ended = &now
}

// completeLocked applies a Completed-family transition. A prior TimedOut,
// Failed, or Rejected state stands (no-op). Caller holds t.mu.
func (t *Task) completeLocked(st State, v any) error {
	if err := t.sealedErr(); err != nil {
		return err
	}
	switch t.state.Kind() {
	case KindTimedOut, KindFailed, KindRejected:
		return nil
	}
	t.state = st
	t.result = v
	t.stampEnded()
	return nil
}

// failLocked applies a Failed-family transition. Overrides Completed and
// TimedOut; a prior Failed (earliest wins) or Rejected state stands.
// Caller holds t.mu.
func (t *Task) failLocked(st State, cause error) error {
	if err := t.sealedErr(); err != nil {
		return err
	}
	switch t.state.Kind() {
	case KindFailed, KindRejected:
		return nil
	}
	t.state = st
	t.err = cause
	t.stampEnded()
	return nil
}

// timeoutLocked applies a TimedOut-family transition. Overrides Started
// but not Completed, Failed, or Rejected. Caller holds t.mu.
func (t *Task) timeoutLocked(st State, cause error) error {
	if err := t.sealedErr(); err != nil {
		return err
	}
	switch t.state.Kind() {
	case KindCompleted, KindFailed, KindRejected:
		return nil
	}
	t.state = st
	if cause != nil {
		t.err = cause
	}
	t.stampEnded()
	return nil
}

// rejectLocked applies a Rejected-family transition, which wins over all
// non-rejected states. The earliest rejection stands. Caller holds t.mu.
func (t *Task) rejectLocked(st State, cause error) error {
	if err := t.sealedErr(); err != nil {
		return err
	}
	if t.state.Kind() == KindRejected {
		return nil
	}
	t.state = st
	if cause != nil {
		t.err = cause
	}
	t.stampEnded()
	return nil
}

// Complete transitions the task to the canonical Completed state with the
// given result value.
func (t *Task) Complete(v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completeLocked(Completed, v)
}

// Succeed transitions the task to the canonical Succeeded state with the
// given result value.
func (t *Task) Succeed(v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completeLocked(Succeeded, v)
}

// CompleteAs transitions the task to a user-named Completed-family state.
func (t *Task) CompleteAs(name string, v any) error {
	st, err := NewCompletedState(name)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completeLocked(st, v)
}

// Fail transitions the task to the canonical Failed state.
func (t *Task) Fail(cause error) error {
	return t.FailAs(NameFailed, cause)
}

// FailAs transitions the task to a user-named Failed-family state.
func (t *Task) FailAs(name string, cause error) error {
	st, err := NewFailedState(name, cause)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failLocked(st, cause)
}

// Timeout transitions the task to the canonical TimedOut state. The cause
// is optional.
func (t *Task) Timeout(cause error) error {
	return t.TimeoutAs(NameTimedOut, cause)
}

// TimeoutAs transitions the task to a user-named TimedOut-family state.
func (t *Task) TimeoutAs(name string, cause error) error {
	st, err := NewTimedOutState(name, cause)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeoutLocked(st, cause)
}

// Reject transitions the task to the canonical Rejected state.
func (t *Task) Reject(reason string, cause error) error {
	return t.RejectAs(NameRejected, reason, cause)
}

// Discard transitions the task to the canonical Discarded state.
func (t *Task) Discard(reason string, cause error) error {
	return t.RejectAs(NameDiscarded, reason, cause)
}

// Abandon transitions the task to the canonical Abandoned state.
func (t *Task) Abandon(reason string, cause error) error {
	return t.RejectAs(NameAbandoned, reason, cause)
}

// RejectAs transitions the task to a user-named Rejected-family state.
// When both a reason and a cause are given the state carries the reason
// and the live cause stays on the task only, keeping the state value
// single-sourced.
func (t *Task) RejectAs(name, reason string, cause error) error {
	stateCause := cause
	if reason != "" {
		stateCause = nil
	}
	st, err := NewRejectedState(name, reason, stateCause)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rejectLocked(st, cause)
}

// Freeze seals the task and its sub-tasks against further state mutation.
// The current state is left untouched. Idempotent.
func (t *Task) Freeze() {
	t.mu.Lock()
	t.frozen = true
	subs := make([]*Task, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()
	for _, sub := range subs {
		sub.Freeze()
	}
}

// Finalise walks the sub-task tree bottom-up, transitions every
// non-terminal task to Failed with a FinalisedError, then freezes the
// tree. Already-terminal tasks keep their state, and so do tasks that
// were already frozen. Idempotent.
func (t *Task) Finalise() {
	for _, sub := range t.SubTasks() {
		sub.Finalise()
	}
	t.mu.Lock()
	if !t.finalised {
		if !t.state.Terminal() && !t.frozen {
			cause := NewFinalisedError("task "+t.name+" finalised before reaching a terminal state", nil)
			if st, err := NewFailedState(NameFailed, cause); err == nil {
				t.state = st
				t.err = cause
				t.stampEnded()
			}
		}
		t.frozen = true
		t.finalised = true
	}
	t.mu.Unlock()
}
