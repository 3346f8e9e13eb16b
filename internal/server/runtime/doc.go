// Package runtime drives a workload node over a line-delimited stream.
//
// A run has two phases:
//
//   - Handshake reads the init request, answers init_ok and learns the
//     node id and roster.
//   - The scheduler then interleaves inbound messages with periodic gossip
//     ticks. A reader goroutine and a ticker goroutine feed one bounded
//     queue; a single consumer goroutine owns the node and processes events
//     strictly one at a time.
//
// When the queue is full, messages wait for room and ticks are dropped
// (configurable). End of input stops the reader; the consumer then drains
// the queue and Run returns. A decode or encode failure is fatal.
package runtime
