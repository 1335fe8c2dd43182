package task

import (
	"log"
	"time"
)

// LogFunc is an optional callback for per-task logging, invoked alongside
// the factory's logger.
type LogFunc func(taskName, level, message string)

// Options configures the wrapping policy of a Factory.
type Options struct {
	// ReturnSuccessOrFailure selects the documented normal mode: Execute
	// converts synchronous panics into Failure outcomes. When false the
	// legacy behaviour applies and panics propagate out of Execute after
	// being recorded.
	ReturnSuccessOrFailure bool

	// DescribeItem renders execute arguments for log lines. Domain error
	// messages name the task only and do not include it. Optional.
	DescribeItem func(args ...any) string

	// DoneTimeout bounds Task.Await when the caller's context carries no
	// deadline. Zero means no bound.
	DoneTimeout time.Duration
}

// DefaultOptions returns the documented normal configuration.
func DefaultOptions() Options {
	return Options{ReturnSuccessOrFailure: true}
}

// Factory configures the wrapping policy and produces Tasks from
// Definitions. A task's factory reference is immutable; the factory never
// mutates task internals except through the Task's own operations.
type Factory struct {
	logger *log.Logger
	opts   Options
	logFn  LogFunc
}

// NewFactory creates a Factory with the given logger and options. A nil
// logger falls back to the process default.
func NewFactory(logger *log.Logger, opts Options) *Factory {
	if logger == nil {
		logger = log.Default()
	}
	return &Factory{logger: logger, opts: opts}
}

// Options returns the factory's configuration.
func (f *Factory) Options() Options {
	return f.opts
}

// SetLogFunc installs an optional per-task log callback.
func (f *Factory) SetLogFunc(fn LogFunc) {
	f.logFn = fn
}

// taskLog logs a message through the factory logger and the optional
// callback.
func (f *Factory) taskLog(taskName, level, msg string) {
	f.logger.Printf("[factory] [%s] [%s] %s", taskName, level, msg)
	if f.logFn != nil {
		f.logFn(taskName, level, msg)
	}
}

// CreateTask builds a fresh Unstarted task tree mirroring the definition,
// recursively creating sub-tasks for each sub-definition. The definition
// is frozen on first use. The root definition must carry an execute
// function.
func (f *Factory) CreateTask(def *Definition) (*Task, error) {
	if def == nil {
		return nil, newInvalidState("cannot create a task from a nil definition")
	}
	if def.Fn() == nil {
		return nil, newInvalidState("definition %q has no execute function", def.Name())
	}
	def.Freeze()
	return f.buildTask(def, nil), nil
}

func (f *Factory) buildTask(def *Definition, parent *Task) *Task {
	t := &Task{
		name:    def.Name(),
		def:     def,
		factory: f,
		state:   Unstarted,
		parent:  parent,
	}
	for _, subDef := range def.Subs() {
		t.subs = append(t.subs, f.buildTask(subDef, t))
	}
	return t
}

// ReconstructTasksFromRootTaskLike rebuilds a task tree from a serialized
// snapshot, preserving names, states, attempt counts, and sub-task order.
// When def is non-nil it is bound to the root record, and its
// sub-definitions are matched to sub-task records by name so reconstructed
// tasks regain their execute functions; unmatched nodes stay unexecutable. The tree is marked finalised if and only if
// every node is terminal; otherwise it stays mutable pending further
// attempts.
func (f *Factory) ReconstructTasksFromRootTaskLike(like TaskLike, def *Definition) (*Task, error) {
	root, err := f.reconstructTask(like, def, nil)
	if err != nil {
		return nil, err
	}
	if allTerminal(root) {
		root.markFinalised()
	}
	return root, nil
}

func (f *Factory) reconstructTask(like TaskLike, def *Definition, parent *Task) (*Task, error) {
	if like.Name == "" {
		return nil, newInvalidState("task-like record requires a name")
	}
	state, err := FromStateLike(like.State)
	if err != nil {
		return nil, err
	}
	if like.Attempts < 0 {
		return nil, newInvalidState("task-like %q has negative attempts", like.Name)
	}
	t := &Task{
		name:          like.Name,
		def:           def,
		factory:       f,
		state:         state,
		attempts:      like.Attempts,
		parent:        parent,
		reconstructed: true,
	}
	if state.Error() != "" {
		t.err = stringError(state.Error())
	}
	for _, subLike := range like.SubTasks {
		var subDef *Definition
		if def != nil {
			subDef = def.Sub(subLike.Name)
		}
		sub, err := f.reconstructTask(subLike, subDef, t)
		if err != nil {
			return nil, err
		}
		if t.Sub(sub.name) != nil {
			return nil, newInvalidState("task-like %q has duplicate sub-task %q", like.Name, sub.name)
		}
		t.subs = append(t.subs, sub)
	}
	return t, nil
}

// allTerminal reports whether every task in the tree is terminal.
func allTerminal(t *Task) bool {
	if !t.Terminal() {
		return false
	}
	for _, sub := range t.SubTasks() {
		if !allTerminal(sub) {
			return false
		}
	}
	return true
}

// markFinalised seals the tree without touching states; used after
// reconstructing a fully terminal snapshot.
func (t *Task) markFinalised() {
	t.mu.Lock()
	t.frozen = true
	t.finalised = true
	subs := make([]*Task, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()
	for _, sub := range subs {
		sub.markFinalised()
	}
}
