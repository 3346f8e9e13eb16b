// Package logger provides structured logging for meshnode.
//
// It wraps the standard library log/slog:
//
//   - logger.go: handler construction and the shared dynamic level
//   - context.go: context propagation with node id tagging
//
// Logs always go to stderr by default. Stdout belongs to the protocol.
package logger
