package reconcile

import (
	"context"
	"sync"
)

// SyncFunc sends the complete desired set and returns the set the server
// stored.
type SyncFunc func(ctx context.Context, desired []string) ([]string, error)

// Change describes the state of one item's control after a step of a toggle.
type Change struct {
	Action Action
	ID     string
	Member bool
	State  RequestState
	Err    error
}

// Toggler owns one id set (likes, cart) and reconciles toggles on it.
// It is safe for concurrent use; toggles on different ids may overlap.
type Toggler struct {
	action   Action
	sync     SyncFunc
	tracker  *Tracker
	onChange func(Change)

	mu  sync.Mutex
	set IDSet
	// sent numbers each write; adopted is the newest write whose answer
	// became the local set.
	sent    uint64
	adopted uint64
}

func NewToggler(action Action, tracker *Tracker, sync SyncFunc, onChange func(Change)) *Toggler {
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Toggler{
		action:   action,
		sync:     sync,
		tracker:  tracker,
		onChange: onChange,
		set:      NewIDSet(),
	}
}

// Reset replaces the local set with a freshly loaded server state.
func (t *Toggler) Reset(ids []string) {
	t.mu.Lock()
	t.set = NewIDSet(ids...)
	t.mu.Unlock()
}

func (t *Toggler) Has(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set.Has(id)
}

func (t *Toggler) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set.Slice()
}

func (t *Toggler) State(id string) RequestState {
	return t.tracker.State(t.action, id)
}

// Toggle flips id optimistically, sends the full desired set and reconciles
// with the answer. It returns the membership the item converged to. While a
// toggle for id is outstanding further calls return ErrRequestInFlight
// without touching the network. An answer that arrives after the answer to
// a later write is ignored.
func (t *Toggler) Toggle(ctx context.Context, id string) (bool, error) {
	if !t.tracker.Begin(t.action, id) {
		return t.Has(id), ErrRequestInFlight
	}

	t.mu.Lock()
	wasMember := t.set.Has(id)
	next, member := Toggle(t.set, id)
	t.set = next
	desired := next.Slice()
	t.sent++
	seq := t.sent
	t.mu.Unlock()

	t.notify(Change{Action: t.action, ID: id, Member: member, State: Pending})

	server, err := t.sync(ctx, desired)

	t.mu.Lock()
	switch {
	case err == nil && seq < t.adopted:
		// A later write already answered with a newer set.
	case err == nil:
		t.set = Settle(t.set, id, wasMember, server, nil)
		t.adopted = seq
	default:
		t.set = Settle(t.set, id, wasMember, server, err)
	}
	member = t.set.Has(id)
	t.mu.Unlock()

	t.tracker.Finish(t.action, id, err)

	state := Succeeded
	if err != nil {
		state = Failed
	}
	t.notify(Change{Action: t.action, ID: id, Member: member, State: state, Err: err})

	return member, err
}

func (t *Toggler) notify(c Change) {
	if t.onChange != nil {
		t.onChange(c)
	}
}
