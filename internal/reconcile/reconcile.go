// Package reconcile implements optimistic updates against a server that
// accepts full-replacement writes of an id set and answers with the set it
// stored.
//
// The flow for one toggle is: flip membership locally, send the whole
// desired set, then either adopt the server's answer or put the toggled id
// back where it was. The server is the source of truth after every round
// trip, successful or not.
package reconcile

import (
	"errors"
	"slices"
)

// ErrRequestInFlight is returned when a toggle is attempted while a previous
// one for the same item and action has not finished.
var ErrRequestInFlight = errors.New("request already in flight")

// IDSet is a set of NFT ids.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Slice returns the ids sorted, so the wire body is deterministic.
func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Toggle returns a copy of current with id's membership flipped, and whether
// id is a member afterwards.
func Toggle(current IDSet, id string) (IDSet, bool) {
	next := current.Clone()
	if next.Has(id) {
		delete(next, id)
		return next, false
	}
	next[id] = struct{}{}
	return next, true
}

// Settle resolves a finished round trip. On success the server's set replaces
// the local one wholesale. On failure only id is restored to its pre-toggle
// membership; other pending optimistic changes in current are kept.
func Settle(current IDSet, id string, wasMember bool, server []string, err error) IDSet {
	if err == nil {
		return NewIDSet(server...)
	}
	next := current.Clone()
	if wasMember {
		next[id] = struct{}{}
	} else {
		delete(next, id)
	}
	return next
}
