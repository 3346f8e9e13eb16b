// Package shutdown provides graceful shutdown for meshnode.
//
// A node stops when its input ends or when the process receives SIGINT or
// SIGTERM. Either way the registered hooks (metrics listener, config
// watcher) run once, newest first, under a timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(shutdown.DefaultTimeout)
//	ctx, stop := h.Context(context.Background())
//	defer stop()
//	defer h.Shutdown()
package shutdown
