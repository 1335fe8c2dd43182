package task

import (
	"context"
	"fmt"
	"time"

	"github.com/gantrydev/gantry/outcome"
)

// Execute runs a single invocation of the wrapped execute function and
// always returns a Try describing the synchronous part: Success with the
// function's raw return, or Failure when it returned an error or
// panicked. Before invoking the function it records the attempt,
// transitions Unstarted to Started, and replaces the done future; the
// done future settles with the ordered resolutions once every awaitable
// and every sub-task has settled. On a synchronous failure it settles at
// once with that single failure, without waiting for sub-tasks.
//
// A frozen or finalised task is not executed: no attempt is recorded and
// the domain error comes back as a Failure.
func (t *Task) Execute(ctx context.Context, args ...any) outcome.Outcome {
	t.mu.Lock()
	if err := t.sealedErr(); err != nil {
		t.mu.Unlock()
		t.logf("warn", "refused execute of %s: %v", t.describeInvocation(args), err)
		return outcome.Failure(err)
	}
	if t.def == nil || t.def.fn == nil {
		t.mu.Unlock()
		return outcome.Failure(newInvalidState("task %q has no execute function", t.name))
	}
	t.attempts++
	attempt := t.attempts
	if t.state.IsUnstarted() {
		t.state = Started
		now := time.Now().UTC()
		t.began = &now
	}
	done := outcome.NewFuture()
	t.done = done
	t.resolutions = nil
	fn := t.def.fn
	legacy := !t.factory.opts.ReturnSuccessOrFailure
	t.mu.Unlock()

	t.logf("info", "executing %s (attempt %d)", t.describeInvocation(args), attempt)

	var ret any
	var err error
	var panicked any
	func() {
		defer func() {
			if p := recover(); p != nil {
				panicked = p
				err = recoveredError(p)
			}
		}()
		ret, err = fn(ctx, t, args...)
	}()

	if err != nil {
		failure := outcome.Failure(err)
		t.setOutcome(failure)
		if terr := t.Fail(err); terr != nil {
			t.logf("warn", "could not record failure of task %s: %v", t.name, terr)
		}
		t.settleDone(done, []outcome.Outcome{failure})
		if legacy && panicked != nil {
			panic(panicked)
		}
		return failure
	}

	success := outcome.Success(ret)
	t.setOutcome(success)
	futures, isList := normalizeReturn(ret)
	go t.observe(done, futures, isList)
	return success
}

// recoveredError converts a recovered panic value into an error.
func recoveredError(p any) error {
	switch v := p.(type) {
	case error:
		return v
	case string:
		return fmt.Errorf("%s", v)
	default:
		return fmt.Errorf("panic: %+v", v)
	}
}

// normalizeReturn maps an execute function's return value to an ordered
// list of awaitables. Futures stay futures; everything else becomes an
// already-resolved entry. The boolean reports whether the return was a
// list, which controls the shape of the auto-completion value.
func normalizeReturn(ret any) ([]*outcome.Future, bool) {
	switch v := ret.(type) {
	case *outcome.Future:
		return []*outcome.Future{v}, false
	case []*outcome.Future:
		futures := make([]*outcome.Future, len(v))
		copy(futures, v)
		return futures, true
	case []any:
		futures := make([]*outcome.Future, len(v))
		for i, item := range v {
			if f, ok := item.(*outcome.Future); ok {
				futures[i] = f
			} else {
				futures[i] = outcome.Resolved(item)
			}
		}
		return futures, true
	default:
		return []*outcome.Future{outcome.Resolved(ret)}, false
	}
}

// observe waits for every awaitable in input order, then for the settled
// sub-task done futures, applies the auto-outcome policy, and settles the
// done future with the resolutions list.
func (t *Task) observe(done *outcome.Future, futures []*outcome.Future, isList bool) {
	resolutions := make([]outcome.Outcome, len(futures))
	for i, f := range futures {
		<-f.Done()
		resolutions[i] = f.Outcome()
	}
	for _, sub := range t.SubTasks() {
		if subDone := sub.Done(); subDone != nil {
			<-subDone.Done()
		}
	}
	t.applyAutoOutcome(resolutions, isList)
	t.settleDone(done, resolutions)
}

// applyAutoOutcome feeds the settled resolutions back into the state
// machine. A failure anywhere applies Fail with the first failure error,
// subject to the normal precedence rules (so an internal Failed or
// Rejected state stands, while an internally recorded success is
// overridden). An all-success list completes the task only when no
// internal state management happened, i.e. the task is still Started.
func (t *Task) applyAutoOutcome(resolutions []outcome.Outcome, isList bool) {
	if err := outcome.FirstFailure(resolutions); err != nil {
		if terr := t.Fail(err); terr != nil {
			t.logf("warn", "auto-outcome of task %s suppressed: %v", t.name, terr)
		}
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.IsStarted() {
		return
	}
	var value any
	if isList {
		value = outcome.Values(resolutions)
	} else if len(resolutions) == 1 {
		value = resolutions[0].Value()
	}
	if err := t.completeLocked(Completed, value); err != nil {
		t.logf("warn", "auto-outcome of task %s suppressed: %v", t.name, err)
	}
}

func (t *Task) setOutcome(o outcome.Outcome) {
	t.mu.Lock()
	t.out = o
	t.hasOutcome = true
	t.mu.Unlock()
}

// settleDone records the resolutions and settles the done future with
// them as its value.
func (t *Task) settleDone(done *outcome.Future, resolutions []outcome.Outcome) {
	t.mu.Lock()
	t.resolutions = resolutions
	t.mu.Unlock()
	done.Complete(resolutions)
}

// describeInvocation renders the task and its arguments for log lines,
// honouring the factory's DescribeItem option.
func (t *Task) describeInvocation(args []any) string {
	if t.factory != nil && t.factory.opts.DescribeItem != nil {
		return fmt.Sprintf("task %s %s", t.name, t.factory.opts.DescribeItem(args...))
	}
	return fmt.Sprintf("task %s (%d args)", t.name, len(args))
}

func (t *Task) logf(level, format string, args ...any) {
	if t.factory == nil {
		return
	}
	t.factory.taskLog(t.name, level, fmt.Sprintf(format, args...))
}
