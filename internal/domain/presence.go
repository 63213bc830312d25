package domain

import "sort"

// PresenceSet is the result of one discovery round.
type PresenceSet map[RoomID]struct{}

func NewPresenceSet(ids ...RoomID) PresenceSet {
	s := make(PresenceSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s PresenceSet) Add(id RoomID) { s[id] = struct{}{} }

func (s PresenceSet) Has(id RoomID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in lexical order.
func (s PresenceSet) Sorted() []RoomID {
	out := make([]RoomID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether both sets hold the same ids.
func (s PresenceSet) Equal(other PresenceSet) bool {
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
