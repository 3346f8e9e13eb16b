// Package config defines the node configuration structure.
package config

import "time"

// NodeConfig is the root configuration for meshnode.
type NodeConfig struct {
	Node      NodeSection      `koanf:"node"`
	Broadcast BroadcastSection `koanf:"broadcast"`
	Gossip    GossipSection    `koanf:"gossip"`
	Log       LogSection       `koanf:"log"`
	Telemetry TelemetrySection `koanf:"telemetry"`
}

// NodeSection configures the event scheduler.
type NodeSection struct {
	// GossipInterval is the period between gossip ticks.
	GossipInterval time.Duration `koanf:"gossip_interval"`

	// QueueCapacity bounds the event queue shared by the reader and the ticker.
	QueueCapacity int `koanf:"queue_capacity"`

	// TickOverflow is "drop" or "block". Inbound messages always block.
	TickOverflow string `koanf:"tick_overflow"`

	// MaxLineBytes bounds a single inbound line.
	MaxLineBytes int `koanf:"max_line_bytes"`
}

// BroadcastSection configures the broadcast workload.
type BroadcastSection struct {
	// GossipMode is "delta" or "full".
	GossipMode string `koanf:"gossip_mode"`
}

// GossipSection caps outbound gossip.
type GossipSection struct {
	// MaxRate is gossip messages per second. Zero disables the limit.
	MaxRate float64 `koanf:"max_rate"`

	// Burst is the token bucket size. Zero derives it from MaxRate.
	Burst int `koanf:"burst"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetrySection configures the optional metrics endpoint.
type TelemetrySection struct {
	// MetricsAddr is the listen address for /metrics. Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`
}
