package config

import (
	"time"

	"github.com/yndnr/meshnode/internal/core/message"
	"github.com/yndnr/meshnode/internal/core/service"
	"github.com/yndnr/meshnode/internal/server/runtime"
)

// Default configuration values.
const (
	DefaultGossipInterval = 300 * time.Millisecond
	DefaultQueueCapacity  = 100
	DefaultTickOverflow   = string(runtime.OverflowDrop)
	DefaultMaxLineBytes   = message.DefaultMaxLineBytes

	DefaultGossipMode = string(service.GossipDelta)

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default node configuration.
func Default() *NodeConfig {
	return &NodeConfig{
		Node: NodeSection{
			GossipInterval: DefaultGossipInterval,
			QueueCapacity:  DefaultQueueCapacity,
			TickOverflow:   DefaultTickOverflow,
			MaxLineBytes:   DefaultMaxLineBytes,
		},
		Broadcast: BroadcastSection{
			GossipMode: DefaultGossipMode,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// RuntimeConfig converts the scheduler settings for the runtime package.
func (c *NodeConfig) RuntimeConfig() runtime.Config {
	return runtime.Config{
		GossipInterval: c.Node.GossipInterval,
		QueueCapacity:  c.Node.QueueCapacity,
		TickOverflow:   runtime.OverflowPolicy(c.Node.TickOverflow),
		MaxLineBytes:   c.Node.MaxLineBytes,
		GossipRate:     c.Gossip.MaxRate,
		GossipBurst:    c.Gossip.Burst,
	}
}
