package service

import (
	"encoding/json"

	"github.com/yndnr/meshnode/internal/core/domain"
	"github.com/yndnr/meshnode/internal/core/message"
	"github.com/yndnr/meshnode/pkg/crdt"
)

// Counter workload payload types.
const (
	TypeAdd   = "add"
	TypeAddOK = "add_ok"
)

// Add increments the cluster-wide counter.
type Add struct {
	Delta int64 `json:"delta"`
}

func (Add) Type() string { return TypeAdd }

// AddOK acknowledges Add.
type AddOK struct{}

func (AddOK) Type() string { return TypeAddOK }

// ReadValueOK answers Read with the counter value.
type ReadValueOK struct {
	Value uint64 `json:"value"`
}

func (ReadValueOK) Type() string { return TypeReadOK }

// GossipCounters carries a replica's full counter state, one body key per
// node id: {"type":"gossip","n1":3,"n2":4}.
type GossipCounters map[string]uint64

func (GossipCounters) Type() string { return TypeGossip }

// UnmarshalJSON reads the flattened state, skipping the envelope header keys.
func (g *GossipCounters) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	out := make(GossipCounters, len(fields))
	for key, raw := range fields {
		if message.IsHeaderKey(key) {
			continue
		}
		var v uint64
		if err := json.Unmarshal(raw, &v); err != nil {
			return domain.ErrMalformedMessage.WithDetailsf("counter entry %q", key).WithCause(err)
		}
		out[key] = v
	}
	*g = out
	return nil
}

// CounterRegistry returns the counter workload's message set.
func CounterRegistry() *message.Registry {
	r := message.NewRegistry()
	message.Register[Add](r)
	message.Register[AddOK](r)
	message.Register[Read](r)
	message.Register[ReadValueOK](r)
	message.Register[Topology](r)
	message.Register[TopologyOK](r)
	message.Register[GossipCounters](r)
	return r
}

// CounterNode replicates a grow-only counter.
//
// Each node increments only its own entry and gossips its whole state to
// every neighbour on each tick. Receivers keep the per-entry maximum, so the
// value read anywhere is the sum of the latest entry each node has seen.
type CounterNode struct {
	base
	counter    *crdt.GCounter
	neighbours neighbourSet
}

// NewCounterNode creates a counter node.
func NewCounterNode(init message.Init, ids *message.Sequence) *CounterNode {
	return &CounterNode{
		base:       newBase(init, ids),
		counter:    crdt.NewGCounter(),
		neighbours: newNeighbourSet(init.NodeID, init.NodeIDs),
	}
}

// Handle implements the counter workload.
func (n *CounterNode) Handle(msg message.Message) (*message.Message, error) {
	switch p := msg.Body.Payload.(type) {
	case Add:
		if p.Delta < 0 {
			return nil, domain.ErrMalformedRequest.WithDetailsf("delta %d is negative", p.Delta)
		}
		n.counter.Increment(n.id, uint64(p.Delta))
		return n.reply(msg, AddOK{})
	case Read:
		return n.reply(msg, ReadValueOK{Value: n.counter.Value()})
	case Topology:
		n.neighbours.apply(p.Topology)
		return n.reply(msg, TopologyOK{})
	case GossipCounters:
		n.counter.Merge(p)
		return nil, nil
	default:
		return nil, nil
	}
}

// Gossip sends the full counter state to every neighbour.
func (n *CounterNode) Gossip() []message.Message {
	if n.counter.Len() == 0 {
		return nil
	}
	state := GossipCounters(n.counter.State())
	peers := n.neighbours.list()
	out := make([]message.Message, 0, len(peers))
	for _, peer := range peers {
		out = append(out, message.New(n.id, peer, state))
	}
	return out
}

// Value returns the counter value as seen by this node.
func (n *CounterNode) Value() uint64 {
	return n.counter.Value()
}

// State returns a copy of the per-node entries.
func (n *CounterNode) State() map[string]uint64 {
	return n.counter.State()
}

// Neighbours returns the current gossip targets.
func (n *CounterNode) Neighbours() []string {
	return n.neighbours.list()
}

// StateSize reports the number of entries held.
func (n *CounterNode) StateSize() int {
	return n.counter.Len()
}
