package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("offline")

func TestToggle(t *testing.T) {
	base := NewIDSet("a", "b")

	next, member := Toggle(base, "c")
	assert.True(t, member)
	assert.Equal(t, []string{"a", "b", "c"}, next.Slice())
	assert.False(t, base.Has("c"), "input is not mutated")

	next, member = Toggle(base, "a")
	assert.False(t, member)
	assert.Equal(t, []string{"b"}, next.Slice())
}

func TestSettle(t *testing.T) {
	t.Run("success adopts server set", func(t *testing.T) {
		got := Settle(NewIDSet("a", "x"), "x", false, []string{"a", "z"}, nil)
		assert.True(t, got.Equal(NewIDSet("a", "z")))
	})

	t.Run("failure restores only the toggled id", func(t *testing.T) {
		current := NewIDSet("a", "x", "other-pending")
		got := Settle(current, "x", false, nil, errOffline)
		assert.True(t, got.Equal(NewIDSet("a", "other-pending")))

		got = Settle(NewIDSet("a"), "y", true, nil, errOffline)
		assert.True(t, got.Equal(NewIDSet("a", "y")))
	})
}

func TestTracker(t *testing.T) {
	tr := NewTracker()

	assert.Equal(t, Idle, tr.State(ActionLike, "a"))
	require.True(t, tr.Begin(ActionLike, "a"))
	assert.False(t, tr.Begin(ActionLike, "a"))
	assert.True(t, tr.Begin(ActionCart, "a"), "actions are independent")
	assert.True(t, tr.Begin(ActionLike, "b"), "items are independent")

	tr.Finish(ActionLike, "a", nil)
	assert.Equal(t, Succeeded, tr.State(ActionLike, "a"))
	tr.Finish(ActionLike, "b", errOffline)
	assert.Equal(t, Failed, tr.State(ActionLike, "b"))

	tr.Reset()
	assert.Equal(t, Idle, tr.State(ActionLike, "a"))
	assert.Equal(t, Pending, tr.State(ActionCart, "a"), "reset keeps in-flight requests")
	assert.Equal(t, "pending", Pending.String())
}

// scriptedServer answers each sync with a function of the desired set.
type scriptedServer struct {
	mu    sync.Mutex
	calls [][]string
	reply func(desired []string) ([]string, error)
}

func (s *scriptedServer) sync(_ context.Context, desired []string) ([]string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, desired)
	s.mu.Unlock()
	return s.reply(desired)
}

func TestTogglerAdoptsServerAnswer(t *testing.T) {
	// The server refuses to store "b": the optimistic guess must be dropped.
	srv := &scriptedServer{reply: func(desired []string) ([]string, error) {
		out := []string{}
		for _, id := range desired {
			if id != "b" {
				out = append(out, id)
			}
		}
		return out, nil
	}}

	var changes []Change
	tg := NewToggler(ActionLike, nil, srv.sync, func(c Change) { changes = append(changes, c) })
	tg.Reset([]string{"a"})

	member, err := tg.Toggle(context.Background(), "b")
	require.NoError(t, err)
	assert.False(t, member)
	assert.False(t, tg.Has("b"))
	assert.Equal(t, [][]string{{"a", "b"}}, srv.calls)

	require.Len(t, changes, 2)
	assert.Equal(t, Change{Action: ActionLike, ID: "b", Member: true, State: Pending}, changes[0])
	assert.Equal(t, Change{Action: ActionLike, ID: "b", Member: false, State: Succeeded}, changes[1])
	assert.Equal(t, Succeeded, tg.State("b"))
}

func TestTogglerSequenceConvergesToServer(t *testing.T) {
	var stored []string
	srv := &scriptedServer{reply: func(desired []string) ([]string, error) {
		stored = desired
		return desired, nil
	}}
	tg := NewToggler(ActionLike, nil, srv.sync, nil)

	for i := 0; i < 5; i++ {
		member, err := tg.Toggle(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, NewIDSet(stored...).Has("x"), member)
	}
	assert.True(t, tg.Has("x"))
}

func TestTogglerRevertsOnFailure(t *testing.T) {
	srv := &scriptedServer{reply: func([]string) ([]string, error) { return nil, errOffline }}

	var last Change
	tg := NewToggler(ActionCart, nil, srv.sync, func(c Change) { last = c })
	tg.Reset([]string{"a", "b"})

	member, err := tg.Toggle(context.Background(), "a")
	assert.ErrorIs(t, err, errOffline)
	assert.True(t, member)
	assert.Equal(t, []string{"a", "b"}, tg.IDs())

	member, err = tg.Toggle(context.Background(), "c")
	assert.ErrorIs(t, err, errOffline)
	assert.False(t, member)
	assert.Equal(t, []string{"a", "b"}, tg.IDs())

	assert.Equal(t, Failed, last.State)
	assert.NotEqual(t, Pending, tg.State("c"), "guard cleared after failure")

	// The control is usable again.
	srv.reply = func(desired []string) ([]string, error) { return desired, nil }
	member, err = tg.Toggle(context.Background(), "c")
	require.NoError(t, err)
	assert.True(t, member)
}

func TestTogglerSuppressesDuplicates(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	syncFn := func(_ context.Context, desired []string) ([]string, error) {
		calls.Add(1)
		close(entered)
		<-release
		return desired, nil
	}
	tg := NewToggler(ActionLike, nil, syncFn, nil)

	done := make(chan error, 1)
	go func() {
		_, err := tg.Toggle(context.Background(), "x")
		done <- err
	}()
	<-entered

	member, err := tg.Toggle(context.Background(), "x")
	assert.ErrorIs(t, err, ErrRequestInFlight)
	assert.True(t, member, "reports the optimistic state")
	assert.Equal(t, Pending, tg.State("x"))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, tg.Has("x"))
}

func TestTogglerIgnoresStaleAnswer(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	syncFn := func(_ context.Context, desired []string) ([]string, error) {
		if !NewIDSet(desired...).Has("b") {
			close(entered)
			<-release
		}
		return desired, nil
	}
	tg := NewToggler(ActionLike, nil, syncFn, nil)

	done := make(chan error, 1)
	go func() {
		_, err := tg.Toggle(context.Background(), "a")
		done <- err
	}()
	<-entered

	member, err := tg.Toggle(context.Background(), "b")
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, []string{"a", "b"}, tg.IDs())

	// The answer to the first write ({a}) arrives last.
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"a", "b"}, tg.IDs())
	assert.Equal(t, Succeeded, tg.State("a"))
}
