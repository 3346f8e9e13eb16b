// Package metric provides Prometheus metrics for meshnode.
//
// A Registry owns its own prometheus.Registry with the Go and process
// collectors plus the node metrics:
//
//   - inbound and outbound messages by type
//   - handler latency by type
//   - gossip sent and gossip suppressed by the rate limit
//   - ticks fired and ticks dropped on a full queue
//   - event queue depth and node state size
//
// Registry satisfies the scheduler's metrics interface. Metrics are served
// at /metrics only when a metrics address is configured.
package metric
