package service

import (
	"fmt"
	"maps"
	"slices"

	"github.com/yndnr/meshnode/internal/core/message"
	"github.com/yndnr/meshnode/pkg/crdt"
)

// Broadcast workload payload types.
const (
	TypeBroadcast   = "broadcast"
	TypeBroadcastOK = "broadcast_ok"
)

// Broadcast delivers one value to the cluster.
type Broadcast struct {
	Message int `json:"message"`
}

func (Broadcast) Type() string { return TypeBroadcast }

// BroadcastOK acknowledges Broadcast.
type BroadcastOK struct{}

func (BroadcastOK) Type() string { return TypeBroadcastOK }

// ReadMessagesOK answers Read with every value the node holds.
type ReadMessagesOK struct {
	Messages []int `json:"messages"`
}

func (ReadMessagesOK) Type() string { return TypeReadOK }

// GossipMessages carries broadcast values between nodes. It is never replied to.
//
// Known lists values the sender received from the destination in earlier
// gossip. It lets the destination stop re-sending them and is never itself
// acknowledged.
type GossipMessages struct {
	Messages []int `json:"messages"`
	Known    []int `json:"known,omitempty"`
}

func (GossipMessages) Type() string { return TypeGossip }

// BroadcastRegistry returns the broadcast workload's message set.
func BroadcastRegistry() *message.Registry {
	r := message.NewRegistry()
	message.Register[Broadcast](r)
	message.Register[BroadcastOK](r)
	message.Register[Read](r)
	message.Register[ReadMessagesOK](r)
	message.Register[Topology](r)
	message.Register[TopologyOK](r)
	message.Register[GossipMessages](r)
	return r
}

// GossipMode selects what a broadcast node sends each tick.
type GossipMode string

const (
	// GossipDelta sends each neighbour only the values it is not known to hold.
	GossipDelta GossipMode = "delta"
	// GossipFull sends each neighbour the whole value set.
	GossipFull GossipMode = "full"
)

// ParseGossipMode validates a configured gossip mode. Empty selects GossipDelta.
func ParseGossipMode(s string) (GossipMode, error) {
	switch GossipMode(s) {
	case "", GossipDelta:
		return GossipDelta, nil
	case GossipFull:
		return GossipFull, nil
	default:
		return "", fmt.Errorf("unknown gossip mode %q", s)
	}
}

// BroadcastNode disseminates a grow-only set of integers.
//
// In delta mode it keeps, per neighbour, the values that neighbour has
// proven to hold, either by gossiping them to us or by listing them as
// known. Values received from a peer are listed back to it on the next
// tick. Values sent but not yet acknowledged are re-sent on later ticks,
// so a lost gossip message delays convergence but never prevents it, and
// a converged pair stops gossiping.
type BroadcastNode struct {
	base
	mode       GossipMode
	values     *crdt.GSet[int]
	neighbours neighbourSet
	known      map[string]*crdt.GSet[int]
	acks       map[string]*crdt.GSet[int]
}

// NewBroadcastNode creates a broadcast node. Its neighbours are the whole
// roster except itself until a topology message says otherwise.
func NewBroadcastNode(init message.Init, ids *message.Sequence, mode GossipMode) *BroadcastNode {
	if mode == "" {
		mode = GossipDelta
	}
	return &BroadcastNode{
		base:       newBase(init, ids),
		mode:       mode,
		values:     crdt.NewGSet[int](),
		neighbours: newNeighbourSet(init.NodeID, init.NodeIDs),
		known:      make(map[string]*crdt.GSet[int]),
		acks:       make(map[string]*crdt.GSet[int]),
	}
}

// Handle implements the broadcast workload.
func (n *BroadcastNode) Handle(msg message.Message) (*message.Message, error) {
	switch p := msg.Body.Payload.(type) {
	case Broadcast:
		n.values.Add(p.Message)
		return n.reply(msg, BroadcastOK{})
	case Read:
		return n.reply(msg, ReadMessagesOK{Messages: n.values.Values()})
	case Topology:
		n.neighbours.apply(p.Topology)
		return n.reply(msg, TopologyOK{})
	case GossipMessages:
		n.values.Merge(p.Messages...)
		n.values.Merge(p.Known...)
		known := n.knownBy(msg.Src)
		known.Merge(p.Messages...)
		known.Merge(p.Known...)
		if n.mode == GossipDelta && len(p.Messages) > 0 {
			ack, ok := n.acks[msg.Src]
			if !ok {
				ack = crdt.NewGSet[int]()
				n.acks[msg.Src] = ack
			}
			ack.Merge(p.Messages...)
		}
		return nil, nil
	default:
		return nil, nil
	}
}

// Gossip emits one gossip message per peer with something to send.
// Peers are the neighbours plus any node still owed an acknowledgement.
func (n *BroadcastNode) Gossip() []message.Message {
	var out []message.Message
	for _, peer := range n.gossipTargets() {
		var vals []int
		switch n.mode {
		case GossipFull:
			vals = n.values.Values()
		default:
			if n.neighbours.contains(peer) {
				vals = n.values.Missing(n.known[peer])
			}
		}
		var known []int
		if ack, ok := n.acks[peer]; ok {
			known = ack.Values()
			delete(n.acks, peer)
		}
		if len(vals) == 0 && len(known) == 0 {
			continue
		}
		if vals == nil {
			vals = []int{}
		}
		out = append(out, message.New(n.id, peer, GossipMessages{Messages: vals, Known: known}))
	}
	return out
}

func (n *BroadcastNode) gossipTargets() []string {
	peers := n.neighbours.list()
	for _, peer := range slices.Sorted(maps.Keys(n.acks)) {
		if !slices.Contains(peers, peer) {
			peers = append(peers, peer)
		}
	}
	return peers
}

// Values returns a sorted snapshot of the value set.
func (n *BroadcastNode) Values() []int {
	return n.values.Values()
}

// Neighbours returns the current gossip targets.
func (n *BroadcastNode) Neighbours() []string {
	return n.neighbours.list()
}

// StateSize reports the number of values held.
func (n *BroadcastNode) StateSize() int {
	return n.values.Len()
}

func (n *BroadcastNode) knownBy(peer string) *crdt.GSet[int] {
	s, ok := n.known[peer]
	if !ok {
		s = crdt.NewGSet[int]()
		n.known[peer] = s
	}
	return s
}
