package task

import "errors"

// StateLike is the serialized form of a State.
type StateLike struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ToStateLike returns the serializable record for s.
func (s State) ToStateLike() StateLike {
	return StateLike{Name: s.name, Kind: s.kind, Error: s.err, Reason: s.reason}
}

// FromStateLike reconstructs the canonical State for a serialized record.
// Dispatch is by kind; canonical names reconstruct to the shared canonical
// values, foreign names keep their label under the recorded kind. Unstarted
// and started records are normalised to the canonical names.
func FromStateLike(like StateLike) (State, error) {
	switch like.Kind {
	case KindUnstarted:
		return Unstarted, nil
	case KindStarted:
		return Started, nil
	case KindCompleted:
		name := like.Name
		if name == "" {
			name = NameCompleted
		}
		return NewCompletedState(name)
	case KindTimedOut:
		name := like.Name
		if name == "" {
			name = NameTimedOut
		}
		return NewTimedOutState(name, stringError(like.Error))
	case KindFailed:
		name := like.Name
		if name == "" {
			name = NameFailed
		}
		cause := stringError(like.Error)
		if cause == nil {
			return State{}, newInvalidState("failed state %q reconstructed without an error", name)
		}
		return NewFailedState(name, cause)
	case KindRejected:
		name := like.Name
		if name == "" {
			name = NameRejected
		}
		if like.Reason != "" && like.Error != "" {
			return State{}, newInvalidState("rejected state %q reconstructed with both a reason and an error", name)
		}
		return NewRejectedState(name, like.Reason, stringError(like.Error))
	}
	return State{}, newInvalidState("unknown state kind %q for %q", like.Kind, like.Name)
}

// stringError rehydrates a serialized error string as an opaque error
// value. Reconstruction never yields the original typed error.
func stringError(s string) error {
	if s == "" {
		return nil
	}
	return errors.New(s)
}
