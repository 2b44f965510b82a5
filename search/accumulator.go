package search

import "github.com/poiesic/tickerdex/core"

// Accumulator collects securities from successive retrieval phases.
// It keeps insertion order, drops repeated ids and stops accepting rows once
// capacity is reached.
type Accumulator struct {
	items    []*core.Security
	seen     map[core.ID]struct{}
	capacity int
}

// NewAccumulator creates an accumulator holding at most capacity rows.
func NewAccumulator(capacity int) *Accumulator {
	if capacity < 0 {
		capacity = 0
	}
	return &Accumulator{
		items:    make([]*core.Security, 0, capacity),
		seen:     make(map[core.ID]struct{}, capacity),
		capacity: capacity,
	}
}

// Add appends security unless it was already added or the accumulator is full.
// Reports whether the row was added.
func (a *Accumulator) Add(security *core.Security) bool {
	if security == nil || a.Full() || a.Contains(security.Id) {
		return false
	}
	a.seen[security.Id] = struct{}{}
	a.items = append(a.items, security)
	return true
}

// AddAll adds securities in order and returns how many were accepted.
func (a *Accumulator) AddAll(securities []*core.Security) int {
	added := 0
	for _, security := range securities {
		if a.Full() {
			break
		}
		if a.Add(security) {
			added++
		}
	}
	return added
}

// Contains reports whether a row with id was added.
func (a *Accumulator) Contains(id core.ID) bool {
	_, ok := a.seen[id]
	return ok
}

// Len returns the number of rows held.
func (a *Accumulator) Len() int {
	return len(a.items)
}

// Remaining returns the unused capacity.
func (a *Accumulator) Remaining() int {
	return a.capacity - len(a.items)
}

// Full reports whether capacity is exhausted.
func (a *Accumulator) Full() bool {
	return a.Remaining() <= 0
}

// Results returns a copy of the accumulated rows in insertion order.
func (a *Accumulator) Results() []*core.Security {
	out := make([]*core.Security, len(a.items))
	copy(out, a.items)
	return out
}
