package config

import (
	"net"

	"github.com/yndnr/meshnode/internal/core/domain"
	"github.com/yndnr/meshnode/internal/core/service"
	"github.com/yndnr/meshnode/internal/server/runtime"
	"github.com/yndnr/meshnode/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *NodeConfig) error {
	if err := verifyNode(&cfg.Node); err != nil {
		return err
	}
	if _, err := service.ParseGossipMode(cfg.Broadcast.GossipMode); err != nil {
		return domain.ErrInvalidConfig.WithDetails("broadcast.gossip_mode").WithCause(err)
	}
	if err := verifyGossip(&cfg.Gossip); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return verifyTelemetry(&cfg.Telemetry)
}

func verifyNode(cfg *NodeSection) error {
	if cfg.GossipInterval <= 0 {
		return domain.ErrInvalidConfig.WithDetails("node.gossip_interval must be positive")
	}
	if cfg.QueueCapacity < 1 {
		return domain.ErrInvalidConfig.WithDetails("node.queue_capacity must be at least 1")
	}
	switch runtime.OverflowPolicy(cfg.TickOverflow) {
	case runtime.OverflowDrop, runtime.OverflowBlock:
	default:
		return domain.ErrInvalidConfig.WithDetailsf("node.tick_overflow %q is not drop or block", cfg.TickOverflow)
	}
	if cfg.MaxLineBytes < 1 {
		return domain.ErrInvalidConfig.WithDetails("node.max_line_bytes must be positive")
	}
	return nil
}

func verifyGossip(cfg *GossipSection) error {
	if cfg.MaxRate < 0 {
		return domain.ErrInvalidConfig.WithDetails("gossip.max_rate must not be negative")
	}
	if cfg.Burst < 0 {
		return domain.ErrInvalidConfig.WithDetails("gossip.burst must not be negative")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return domain.ErrInvalidConfig.WithDetailsf("log.level %q is unknown", cfg.Level)
	}
	switch cfg.Format {
	case "", "json", "text", "console":
	default:
		return domain.ErrInvalidConfig.WithDetailsf("log.format %q is unknown", cfg.Format)
	}
	return nil
}

func verifyTelemetry(cfg *TelemetrySection) error {
	if cfg.MetricsAddr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
		return domain.ErrInvalidConfig.WithDetails("telemetry.metrics_addr").WithCause(err)
	}
	return nil
}
