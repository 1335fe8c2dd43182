package task

import (
	"fmt"
	"strings"
)

// TaskLike is the serialized form of a task tree: name, state record,
// attempt count, and sub-task records in order.
type TaskLike struct {
	Name     string     `json:"name"`
	State    StateLike  `json:"state"`
	Attempts int        `json:"attempts"`
	SubTasks []TaskLike `json:"sub_tasks,omitempty"`
}

// ToTaskLike returns the serializable snapshot of the task tree.
func (t *Task) ToTaskLike() TaskLike {
	t.mu.Lock()
	like := TaskLike{
		Name:     t.name,
		State:    t.state.ToStateLike(),
		Attempts: t.attempts,
	}
	subs := make([]*Task, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()
	for _, sub := range subs {
		like.SubTasks = append(like.SubTasks, sub.ToTaskLike())
	}
	return like
}

// Summary renders a one-line human-readable description of the task tree,
// used by notifiers and the CLI.
func Summary(t *Task) string {
	var b strings.Builder
	writeSummary(&b, t)
	return b.String()
}

func writeSummary(b *strings.Builder, t *Task) {
	st := t.State()
	fmt.Fprintf(b, "%s=%s", t.Name(), st.Name())
	if n := t.Attempts(); n != 1 {
		fmt.Fprintf(b, "(x%d)", n)
	}
	subs := t.SubTasks()
	if len(subs) == 0 {
		return
	}
	b.WriteString(" [")
	for i, sub := range subs {
		if i > 0 {
			b.WriteString(", ")
		}
		writeSummary(b, sub)
	}
	b.WriteString("]")
}
