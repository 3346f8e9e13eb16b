package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/meshnode/internal/infra/buildinfo"
	"github.com/yndnr/meshnode/internal/infra/confloader"
	"github.com/yndnr/meshnode/internal/infra/shutdown"
	"github.com/yndnr/meshnode/internal/server/config"
	"github.com/yndnr/meshnode/internal/server/httpserver"
	"github.com/yndnr/meshnode/internal/server/runtime"
	"github.com/yndnr/meshnode/internal/telemetry/logger"
	"github.com/yndnr/meshnode/internal/telemetry/metric"
)

var _ runtime.Metrics = (*metric.Registry)(nil)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":       "log.level",
	"log-format":      "log.format",
	"gossip-interval": "node.gossip_interval",
	"queue-capacity":  "node.queue_capacity",
	"tick-overflow":   "node.tick_overflow",
	"max-line-bytes":  "node.max_line_bytes",
	"gossip-rate":     "gossip.max_rate",
	"gossip-burst":    "gossip.burst",
	"metrics-addr":    "telemetry.metrics_addr",
	"gossip-mode":     "broadcast.gossip_mode",
}

// flagOverrides collects the flags given explicitly on the command line.
func flagOverrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for name, key := range flagKeys {
		if c.IsSet(name) {
			out[key] = c.Value(name)
		}
	}
	return out
}

// loadConfig layers defaults, file, environment and flags, then validates.
func loadConfig(path string, overrides map[string]any) (*config.NodeConfig, *confloader.Loader, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

func runWorkload(c *cli.Context, wl workloadSpec) error {
	cfg, loader, err := loadConfig(c.String("config"), flagOverrides(c))
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)

	workload, err := wl.build(cfg)
	if err != nil {
		return fmt.Errorf("build workload %s: %w", wl.name, err)
	}

	info := buildinfo.Get()
	reg := metric.NewRegistry()
	reg.SetBuildInfo(info.Version, info.Commit)

	rt := runtime.New(workload, cfg.RuntimeConfig(),
		runtime.WithLogger(log),
		runtime.WithMetrics(reg),
	)

	h := shutdown.NewHandler(shutdown.DefaultTimeout)
	ctx, stop := h.Context(c.Context)
	defer stop()
	defer func() {
		if err := h.Shutdown(); err != nil {
			log.Warn("shutdown incomplete", "error", err)
		}
	}()

	if addr := cfg.Telemetry.MetricsAddr; addr != "" {
		srv := httpserver.New(addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics:  reg.Handler(),
			Status:   rt,
			Workload: wl.name,
			Logger:   log,
		}))
		if err := srv.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		log.Info("metrics server listening", "addr", srv.Addr())
		h.OnShutdown(srv.Shutdown)
	}

	if loader.FilePath() != "" {
		w, err := watchConfig(loader, log)
		if err != nil {
			log.Warn("config watch disabled", "path", loader.FilePath(), "error", err)
		} else {
			h.OnShutdown(func(context.Context) error { return w.Stop() })
		}
	}

	log.Info("starting meshnode",
		"version", info.Version,
		"commit", info.Commit,
		"workload", wl.name,
	)

	err = rt.Run(ctx, c.App.Reader, c.App.Writer)
	switch {
	case errors.Is(err, context.Canceled):
		log.Info("node stopped by signal")
		return nil
	case err != nil:
		log.Error("node failed", "error", err)
		return err
	}
	log.Info("node stopped", "reason", "input closed")
	return nil
}

// watchConfig reapplies the log level whenever the config file changes.
// Other settings take effect on restart.
func watchConfig(loader *confloader.Loader, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(loader.FilePath()); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(string) { reloadConfig(loader, log) })
	w.StartAsync()
	return w, nil
}

func reloadConfig(loader *confloader.Loader, log *slog.Logger) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		log.Warn("config reload failed", "error", err)
		return
	}
	if err := config.Verify(cfg); err != nil {
		log.Warn("config reload rejected", "error", err)
		return
	}

	prev := logger.GetLevel()
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("config reload rejected", "error", err)
		return
	}
	if cur := logger.GetLevel(); cur != prev {
		log.Info("log level changed", "from", prev, "to", cur)
	}
}
