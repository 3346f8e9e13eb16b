// Package crdt provides the state-based replicated data types meshnode
// gossips between replicas.
//
//   - GSet: grow-only set, merged by union
//   - GCounter: grow-only counter, one entry per replica, merged by per-entry max
//
// Both merges are commutative, associative and idempotent, so replicas
// converge no matter how gossip is lost, duplicated or reordered, as long
// as every update eventually reaches every replica.
//
// Usage:
//
//	seen := crdt.NewGSet[int]()
//	seen.Merge(5, 9)
//	seen.Values() // [5 9]
//
// Values are not safe for concurrent use. A node keeps them on its single
// consumer goroutine.
package crdt
