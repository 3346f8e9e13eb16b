package crdt

import (
	"maps"
	"slices"
)

// GCounter is a grow-only counter with one entry per replica.
//
// A replica only increments its own entry. Entries learned from peers
// change only through Merge, which keeps the larger of the two values.
type GCounter struct {
	entries map[string]uint64
}

// NewGCounter creates an empty counter.
func NewGCounter() *GCounter {
	return &GCounter{entries: make(map[string]uint64)}
}

// Increment adds delta to replica id's entry and returns the new entry value.
func (c *GCounter) Increment(id string, delta uint64) uint64 {
	c.entries[id] += delta
	return c.entries[id]
}

// Merge folds a peer's state into c using per-entry max.
// It returns the replica ids whose entries grew.
func (c *GCounter) Merge(state map[string]uint64) []string {
	var grown []string
	for id, v := range state {
		if v > c.entries[id] {
			c.entries[id] = v
			grown = append(grown, id)
		}
	}
	slices.Sort(grown)
	return grown
}

// MergeCounter folds other into c.
func (c *GCounter) MergeCounter(other *GCounter) []string {
	return c.Merge(other.entries)
}

// Get returns replica id's entry.
func (c *GCounter) Get(id string) uint64 {
	return c.entries[id]
}

// Value returns the sum of all entries.
func (c *GCounter) Value() uint64 {
	var total uint64
	for _, v := range c.entries {
		total += v
	}
	return total
}

// Len returns the number of replicas with an entry.
func (c *GCounter) Len() int {
	return len(c.entries)
}

// State returns a copy of the entries, suitable for gossip.
func (c *GCounter) State() map[string]uint64 {
	return maps.Clone(c.entries)
}

// Clone returns an independent copy of c.
func (c *GCounter) Clone() *GCounter {
	return &GCounter{entries: maps.Clone(c.entries)}
}

// Equal reports whether c and other hold the same entries.
// A missing entry and a zero entry compare equal.
func (c *GCounter) Equal(other *GCounter) bool {
	for id, v := range c.entries {
		if other.entries[id] != v {
			return false
		}
	}
	for id, v := range other.entries {
		if c.entries[id] != v {
			return false
		}
	}
	return true
}
