package task

import (
	"context"
	"strings"
)

// ExecuteFn is the user-supplied function wrapped by a Task. The task the
// invocation belongs to is passed in so the function can drive its own
// state (Succeed, Fail, RejectAs, ...). The returned value may be a
// *outcome.Future, a []*outcome.Future, a []any mixing futures and plain
// values, or a plain value; a non-nil error (or a panic) is a synchronous
// failure.
type ExecuteFn func(ctx context.Context, t *Task, args ...any) (any, error)

// Definition is a declarative, reusable blueprint for producing Tasks:
// a name, an execute function, and an ordered tree of sub-definitions.
// Definitions are frozen on first use by a factory; further structural
// change then fails.
type Definition struct {
	name   string
	fn     ExecuteFn
	subs   []*Definition
	parent *Definition
	frozen bool
}

// New creates a root Definition. The name must be non-blank. The execute
// function may be nil only for definitions never used to create
// executable tasks.
func New(name string, fn ExecuteFn) (*Definition, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newInvalidState("definition requires a non-blank name")
	}
	return &Definition{name: name, fn: fn}, nil
}

// MustNew is New that panics on error, for package-level definitions.
func MustNew(name string, fn ExecuteFn) *Definition {
	d, err := New(name, fn)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the definition's name.
func (d *Definition) Name() string { return d.name }

// Fn returns the definition's execute function, nil for container nodes.
func (d *Definition) Fn() ExecuteFn { return d.fn }

// Parent returns the parent definition, nil for roots.
func (d *Definition) Parent() *Definition { return d.parent }

// Frozen reports whether the definition has been frozen.
func (d *Definition) Frozen() bool { return d.frozen }

// DefineSub appends a child definition. The name must be non-blank and
// unique among d's direct children; fn may be nil for a container node.
// Fails once d is frozen.
func (d *Definition) DefineSub(name string, fn ExecuteFn) (*Definition, error) {
	if d.frozen {
		return nil, NewFrozenError("definition "+d.name+" is frozen", nil)
	}
	if strings.TrimSpace(name) == "" {
		return nil, newInvalidState("sub-definition of %q requires a non-blank name", d.name)
	}
	if d.Sub(name) != nil {
		return nil, newInvalidState("definition %q already has a sub-definition named %q", d.name, name)
	}
	sub := &Definition{name: name, fn: fn, parent: d}
	d.subs = append(d.subs, sub)
	return sub, nil
}

// Sub returns the direct child with the given name, or nil.
func (d *Definition) Sub(name string) *Definition {
	for _, sub := range d.subs {
		if sub.name == name {
			return sub
		}
	}
	return nil
}

// Subs returns the ordered child definitions.
func (d *Definition) Subs() []*Definition {
	subs := make([]*Definition, len(d.subs))
	copy(subs, d.subs)
	return subs
}

// Freeze seals the whole definition tree against structural change.
// Idempotent.
func (d *Definition) Freeze() {
	d.frozen = true
	for _, sub := range d.subs {
		sub.Freeze()
	}
}
