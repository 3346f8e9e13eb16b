// Package domain defines the error model shared by every meshnode layer.
//
// Errors fall into two groups:
//
//   - fatal errors (handshake, decode, encode, configuration) stop the node
//   - request errors carry a protocol error code and become error replies
//
// Callers compare errors with errors.Is against the sentinel values; two
// DomainErrors are equal when their codes match.
package domain
