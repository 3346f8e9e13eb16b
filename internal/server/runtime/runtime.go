package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/meshnode/internal/core/domain"
	"github.com/yndnr/meshnode/internal/core/message"
	"github.com/yndnr/meshnode/internal/telemetry/logger"
)

// Node is a workload state machine. Handle returns the reply to msg, if any.
// A returned error carrying a protocol error code becomes an error reply;
// any other error stops the node.
type Node interface {
	Handle(msg message.Message) (*message.Message, error)
}

// Gossiper is implemented by nodes that disseminate state on every tick.
type Gossiper interface {
	Gossip() []message.Message
}

// StateSizer is implemented by nodes that can report the size of their state.
type StateSizer interface {
	StateSize() int
}

// Workload binds a message set to the constructor of its node.
type Workload struct {
	Name     string
	Registry *message.Registry
	NewNode  func(init message.Init, ids *message.Sequence) (Node, error)
}

// OverflowPolicy decides what a producer does when the event queue is full.
type OverflowPolicy string

const (
	// OverflowDrop discards the event.
	OverflowDrop OverflowPolicy = "drop"
	// OverflowBlock waits for room.
	OverflowBlock OverflowPolicy = "block"
)

// Config holds scheduler settings.
type Config struct {
	// GossipInterval is the tick period. The first tick fires one interval after start.
	GossipInterval time.Duration
	// QueueCapacity bounds the event queue shared by both producers.
	QueueCapacity int
	// TickOverflow applies to ticks. Messages always wait for room.
	TickOverflow OverflowPolicy
	// MaxLineBytes bounds one inbound line.
	MaxLineBytes int
	// GossipRate caps outbound gossip messages per second. Zero means unlimited.
	GossipRate float64
	// GossipBurst is the token bucket size for GossipRate.
	GossipBurst int
}

// DefaultConfig returns the default scheduler settings.
func DefaultConfig() Config {
	return Config{
		GossipInterval: 300 * time.Millisecond,
		QueueCapacity:  100,
		TickOverflow:   OverflowDrop,
		MaxLineBytes:   message.DefaultMaxLineBytes,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.GossipInterval <= 0 {
		c.GossipInterval = d.GossipInterval
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = d.QueueCapacity
	}
	if c.TickOverflow == "" {
		c.TickOverflow = d.TickOverflow
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = d.MaxLineBytes
	}
	return c
}

// limiter builds the gossip token bucket.
func (c Config) limiter() *rate.Limiter {
	if c.GossipRate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := c.GossipBurst
	if burst <= 0 {
		burst = int(math.Max(1, math.Ceil(c.GossipRate)))
	}
	return rate.NewLimiter(rate.Limit(c.GossipRate), burst)
}

// Runtime runs one workload node.
type Runtime struct {
	workload Workload
	cfg      Config
	logger   *slog.Logger
	metrics  Metrics
	nodeID   atomic.Value
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Records are tagged with the node id after handshake.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(r *Runtime) { r.metrics = m }
}

// New creates a Runtime for w.
func New(w Workload, cfg Config, opts ...Option) *Runtime {
	r := &Runtime{
		workload: w,
		cfg:      cfg.withDefaults(),
		logger:   slog.Default(),
		metrics:  nopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NodeID returns the id assigned at handshake, or "" before it completes.
func (r *Runtime) NodeID() string {
	id, _ := r.nodeID.Load().(string)
	return id
}

// Config returns the effective configuration.
func (r *Runtime) Config() Config {
	return r.cfg
}

// Run performs the handshake on in/out and then schedules events until the
// input ends, a fatal error occurs or ctx is cancelled.
func (r *Runtime) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if r.workload.Registry == nil || r.workload.NewNode == nil {
		return fmt.Errorf("workload %q is incomplete", r.workload.Name)
	}

	dec := message.NewDecoder(in, r.cfg.MaxLineBytes)
	enc := message.NewEncoder(out)

	init, next, err := Handshake(dec, enc)
	if err != nil {
		return err
	}
	r.nodeID.Store(init.NodeID)
	r.metrics.MessageReceived(message.TypeInit)
	r.metrics.MessageSent(message.TypeInitOK)

	log := r.logger.With("node_id", init.NodeID, "workload", r.workload.Name)
	ctx = logger.WithNodeID(logger.WithLogger(ctx, log), init.NodeID)

	ids := message.NewSequence(next)
	node, err := r.workload.NewNode(init, ids)
	if err != nil {
		return domain.ErrNotInitialized.WithDetails(r.workload.Name).WithCause(err)
	}

	log.Info("node initialized",
		"roster", init.NodeIDs,
		"gossip_interval", r.cfg.GossipInterval,
		"queue_capacity", r.cfg.QueueCapacity,
	)

	s := newScheduler(node, ids, dec, r.workload.Registry, enc, r.cfg, log, r.metrics)
	return s.run(ctx)
}
