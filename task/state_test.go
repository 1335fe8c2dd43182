package task

import (
	"errors"
	"testing"
)

func TestKindProjectionConsistency(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		kind      Kind
		completed bool
		failed    bool
		timedOut  bool
		rejected  bool
	}{
		{"Unstarted", Unstarted, KindUnstarted, false, false, false, false},
		{"Started", Started, KindStarted, false, false, false, false},
		{"Completed", Completed, KindCompleted, true, false, false, false},
		{"Succeeded", Succeeded, KindCompleted, true, false, false, false},
		{"TimedOut", TimedOut, KindTimedOut, false, false, true, false},
		{"Failed", mustFailedState(t, NameFailed, errors.New("boom")), KindFailed, false, true, false, false},
		{"Rejected", Rejected, KindRejected, false, false, false, true},
		{"Discarded", Discarded, KindRejected, false, false, false, true},
		{"Abandoned", Abandoned, KindRejected, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.state.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", tt.state.Kind(), tt.kind)
			}
			if tt.state.IsCompleted() != tt.completed {
				t.Errorf("IsCompleted() = %v, want %v", tt.state.IsCompleted(), tt.completed)
			}
			if tt.state.IsFailed() != tt.failed {
				t.Errorf("IsFailed() = %v, want %v", tt.state.IsFailed(), tt.failed)
			}
			if tt.state.IsTimedOut() != tt.timedOut {
				t.Errorf("IsTimedOut() = %v, want %v", tt.state.IsTimedOut(), tt.timedOut)
			}
			if tt.state.IsRejected() != tt.rejected {
				t.Errorf("IsRejected() = %v, want %v", tt.state.IsRejected(), tt.rejected)
			}
			wantTerminal := tt.kind != KindUnstarted && tt.kind != KindStarted
			if tt.state.Terminal() != wantTerminal {
				t.Errorf("Terminal() = %v, want %v", tt.state.Terminal(), wantTerminal)
			}
		})
	}
}

func mustFailedState(t *testing.T, name string, cause error) State {
	t.Helper()
	st, err := NewFailedState(name, cause)
	if err != nil {
		t.Fatalf("NewFailedState: %v", err)
	}
	return st
}

func mustRejectedState(t *testing.T, name, reason string, cause error) State {
	t.Helper()
	st, err := NewRejectedState(name, reason, cause)
	if err != nil {
		t.Fatalf("NewRejectedState: %v", err)
	}
	return st
}

func TestStatePrecedenceOrder(t *testing.T) {
	// Lowest to highest per the transition precedence.
	ordered := []State{Unstarted, Started, Completed, TimedOut, mustFailedState(t, NameFailed, errors.New("boom")), Rejected}
	for i := range ordered {
		for j := range ordered {
			got := CompareStates(ordered[i], ordered[j])
			switch {
			case i < j && got >= 0:
				t.Errorf("CompareStates(%s, %s) = %d, want negative", ordered[i].Name(), ordered[j].Name(), got)
			case i > j && got <= 0:
				t.Errorf("CompareStates(%s, %s) = %d, want positive", ordered[i].Name(), ordered[j].Name(), got)
			case i == j && got != 0:
				t.Errorf("CompareStates(%s, %s) = %d, want 0", ordered[i].Name(), ordered[j].Name(), got)
			}
		}
	}
}

func TestStateConstructors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("completed canonical names reuse singletons", func(t *testing.T) {
		st, err := NewCompletedState(NameSucceeded)
		if err != nil {
			t.Fatal(err)
		}
		if st != Succeeded {
			t.Errorf("got %v, want shared Succeeded value", st)
		}
	})

	t.Run("completed user name", func(t *testing.T) {
		st, err := NewCompletedState("Archived")
		if err != nil {
			t.Fatal(err)
		}
		if st.Name() != "Archived" || st.Kind() != KindCompleted {
			t.Errorf("got %v", st)
		}
	})

	t.Run("failed requires error", func(t *testing.T) {
		if _, err := NewFailedState(NameFailed, nil); !errors.Is(err, ErrInvalidState) {
			t.Errorf("err = %v, want invalid state", err)
		}
	})

	t.Run("failed stores error string", func(t *testing.T) {
		st := mustFailedState(t, NameFailed, boom)
		if st.Error() != "boom" {
			t.Errorf("Error() = %q, want boom", st.Error())
		}
	})

	t.Run("blank names rejected", func(t *testing.T) {
		if _, err := NewCompletedState(""); !errors.Is(err, ErrInvalidState) {
			t.Errorf("completed: %v", err)
		}
		if _, err := NewTimedOutState("", nil); !errors.Is(err, ErrInvalidState) {
			t.Errorf("timed out: %v", err)
		}
		if _, err := NewRejectedState("", "", nil); !errors.Is(err, ErrInvalidState) {
			t.Errorf("rejected: %v", err)
		}
	})

	t.Run("timed out carries optional error", func(t *testing.T) {
		st, err := NewTimedOutState(NameTimedOut, boom)
		if err != nil {
			t.Fatal(err)
		}
		if st.Error() != "boom" {
			t.Errorf("Error() = %q", st.Error())
		}
		plain, err := NewTimedOutState(NameTimedOut, nil)
		if err != nil {
			t.Fatal(err)
		}
		if plain != TimedOut {
			t.Errorf("got %v, want shared TimedOut value", plain)
		}
	})

	t.Run("rejected carries at most one of reason and error", func(t *testing.T) {
		if _, err := NewRejectedState("Skipped", "dup", errors.New("boom")); !errors.Is(err, ErrInvalidState) {
			t.Errorf("err = %v, want invalid state", err)
		}
		st := mustRejectedState(t, "Skipped", "dup", nil)
		if st.Reason() != "dup" || st.Error() != "" {
			t.Errorf("got %v", st)
		}
	})

	t.Run("rejected canonical names reuse singletons", func(t *testing.T) {
		for name, want := range map[string]State{
			NameRejected:  Rejected,
			NameDiscarded: Discarded,
			NameAbandoned: Abandoned,
		} {
			st := mustRejectedState(t, name, "", nil)
			if st != want {
				t.Errorf("NewRejectedState(%s) = %v, want shared value", name, st)
			}
		}
	})
}

func TestFromStateLike(t *testing.T) {
	tests := []struct {
		name       string
		like       StateLike
		want       State
		wantName   string
		wantKind   Kind
		wantErrStr string
		wantErr    bool
	}{
		{name: "unstarted canonical", like: StateLike{Name: NameUnstarted, Kind: KindUnstarted}, want: Unstarted},
		{name: "unstarted foreign name normalised", like: StateLike{Name: "Fresh", Kind: KindUnstarted}, want: Unstarted},
		{name: "unstarted empty name", like: StateLike{Kind: KindUnstarted}, want: Unstarted},
		{name: "started canonical", like: StateLike{Name: NameStarted, Kind: KindStarted}, want: Started},
		{name: "started foreign name normalised", like: StateLike{Name: "Running", Kind: KindStarted}, want: Started},
		{name: "succeeded singleton", like: StateLike{Name: NameSucceeded, Kind: KindCompleted}, want: Succeeded},
		{name: "completed singleton", like: StateLike{Name: NameCompleted, Kind: KindCompleted}, want: Completed},
		{name: "completed user name", like: StateLike{Name: "Archived", Kind: KindCompleted}, wantName: "Archived", wantKind: KindCompleted},
		{name: "timed out singleton", like: StateLike{Name: NameTimedOut, Kind: KindTimedOut}, want: TimedOut},
		{name: "timed out with error", like: StateLike{Name: NameTimedOut, Kind: KindTimedOut, Error: "slow"}, wantName: NameTimedOut, wantKind: KindTimedOut, wantErrStr: "slow"},
		{name: "timed out user name", like: StateLike{Name: "Expired", Kind: KindTimedOut}, wantName: "Expired", wantKind: KindTimedOut},
		{name: "failed", like: StateLike{Name: NameFailed, Kind: KindFailed, Error: "boom"}, wantName: NameFailed, wantKind: KindFailed, wantErrStr: "boom"},
		{name: "failed user name", like: StateLike{Name: "Errored", Kind: KindFailed, Error: "boom"}, wantName: "Errored", wantKind: KindFailed, wantErrStr: "boom"},
		{name: "failed without error invalid", like: StateLike{Name: NameFailed, Kind: KindFailed}, wantErr: true},
		{name: "rejected singleton", like: StateLike{Name: NameRejected, Kind: KindRejected}, want: Rejected},
		{name: "discarded singleton", like: StateLike{Name: NameDiscarded, Kind: KindRejected}, want: Discarded},
		{name: "abandoned singleton", like: StateLike{Name: NameAbandoned, Kind: KindRejected}, want: Abandoned},
		{name: "rejected user name with reason", like: StateLike{Name: "ThrownAway", Kind: KindRejected, Reason: "dup"}, wantName: "ThrownAway", wantKind: KindRejected},
		{name: "rejected both reason and error invalid", like: StateLike{Name: NameRejected, Kind: KindRejected, Reason: "dup", Error: "boom"}, wantErr: true},
		{name: "unknown kind invalid", like: StateLike{Name: "X", Kind: Kind("BOGUS")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromStateLike(tt.like)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidState) {
					t.Fatalf("err = %v, want invalid state", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromStateLike: %v", err)
			}
			if tt.wantName == "" {
				if got != tt.want {
					t.Errorf("got %v, want shared %v", got, tt.want)
				}
				return
			}
			if got.Name() != tt.wantName || got.Kind() != tt.wantKind || got.Error() != tt.wantErrStr {
				t.Errorf("got %v, want name=%s kind=%s err=%q", got, tt.wantName, tt.wantKind, tt.wantErrStr)
			}
		})
	}
}

func TestStateLikeRoundTrip(t *testing.T) {
	states := []State{
		Unstarted,
		Started,
		Completed,
		Succeeded,
		TimedOut,
		mustFailedState(t, NameFailed, errors.New("boom")),
		mustFailedState(t, "Errored", errors.New("boom")),
		Rejected,
		Discarded,
		Abandoned,
		mustRejectedState(t, "ThrownAway", "dup", nil),
		mustRejectedState(t, NameRejected, "", errors.New("boom")),
	}

	for _, st := range states {
		t.Run(st.Name(), func(t *testing.T) {
			got, err := FromStateLike(st.ToStateLike())
			if err != nil {
				t.Fatalf("FromStateLike: %v", err)
			}
			if got.Name() != st.Name() || got.Kind() != st.Kind() ||
				got.Error() != st.Error() || got.Reason() != st.Reason() {
				t.Errorf("round trip %v -> %v", st, got)
			}
		})
	}
}

func TestTimedOutRoundTripWithError(t *testing.T) {
	st, err := NewTimedOutState(NameTimedOut, errors.New("slow"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := FromStateLike(st.ToStateLike())
	if err != nil {
		t.Fatal(err)
	}
	if got.Error() != "slow" || got.Kind() != KindTimedOut {
		t.Errorf("round trip = %v", got)
	}
}
