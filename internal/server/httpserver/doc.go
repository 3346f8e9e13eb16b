// Package httpserver provides the optional telemetry HTTP server.
//
// The node protocol runs over stdin and stdout; this server listens on a
// separate address and exposes:
//
//   - GET /metrics: Prometheus exposition
//   - GET /healthz: liveness with workload and node id
//   - GET /readyz: 503 until the handshake has assigned a node id
package httpserver
