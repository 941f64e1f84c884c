package reconcile

import "sync"

type RequestState int

const (
	Idle RequestState = iota
	Pending
	Succeeded
	Failed
)

func (s RequestState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Action distinguishes independent controls on the same item.
type Action string

const (
	ActionLike Action = "like"
	ActionCart Action = "cart"
)

type trackKey struct {
	action Action
	id     string
}

// Tracker keeps per-item request state. It lives in the view model, not in
// whatever renders the item, so recycling a row never loses or leaks state.
type Tracker struct {
	mu     sync.Mutex
	states map[trackKey]RequestState
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[trackKey]RequestState)}
}

// Begin marks (action, id) pending. It returns false if it already was.
func (t *Tracker) Begin(action Action, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := trackKey{action, id}
	if t.states[k] == Pending {
		return false
	}
	t.states[k] = Pending
	return true
}

func (t *Tracker) Finish(action Action, id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := Succeeded
	if err != nil {
		state = Failed
	}
	t.states[trackKey{action, id}] = state
}

func (t *Tracker) State(action Action, id string) RequestState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[trackKey{action, id}]
}

// Reset forgets every item, e.g. when the list is reloaded.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, s := range t.states {
		if s != Pending {
			delete(t.states, k)
		}
	}
}
