// Package tests runs several meshnode runtimes in one process and routes
// their stdout to each other's stdin, the way the test harness does.
package tests
