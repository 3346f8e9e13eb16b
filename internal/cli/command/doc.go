// Package command defines the meshnode command line.
//
//   - root.go: application, global flags, workload selection
//   - workload.go: the workload table
//   - run.go: configuration, logging, metrics and shutdown wiring around
//     one runtime
//
// A workload is picked by subcommand (meshnode broadcast) or, for harnesses
// that start the binary without arguments, by MESHNODE_WORKLOAD.
package command
