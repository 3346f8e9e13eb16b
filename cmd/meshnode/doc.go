// Package main provides the entry point for meshnode.
//
// meshnode is one node of a simulated distributed system. A test harness
// starts several copies, sends each an init message on stdin and routes
// the JSON lines they print on stdout to one another.
//
// Usage:
//
//	meshnode [global flags] <workload> [workload flags]
//	MESHNODE_WORKLOAD=broadcast meshnode
//
// Workloads: echo, unique-ids, broadcast, counter, kafka.
//
// Logs go to stderr. Stdout carries protocol messages only.
package main
