// Package service implements the state machines of meshnode's workloads.
//
// This package contains:
//
//   - EchoNode: echoes requests back
//   - UniqueIDNode: cluster-unique id generation
//   - BroadcastNode: set-union broadcast with per-neighbour delta gossip
//   - CounterNode: grow-only counter, state-based gossip
//   - KafkaNode: single-node append-only logs with committed offsets
//
// Every node handles one message at a time and is owned by a single
// goroutine, so none of them lock. Handle returns at most one reply and
// draws exactly one id from the node's sequence per reply; gossip and
// unexpected acknowledgements draw none. Each workload's accepted message
// set is declared by its Registry function.
package service
